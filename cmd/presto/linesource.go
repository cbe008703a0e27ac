package main

import (
	"errors"
	"io"

	"github.com/ergochat/readline"
)

// ErrInterrupted reports that the user cancelled the pending read. It is a
// loop-control event, not a failure: the console saves and clears its
// buffer and keeps running.
var ErrInterrupted = errors.New("interrupted")

// LineSource supplies console input lines and owns the persisted history.
// ReadLine returns io.EOF at end of input and ErrInterrupted when the user
// cancels the pending line. The console only ever appends to history; it
// never reads it back.
type LineSource interface {
	ReadLine(prompt string) (string, error)
	AppendHistory(entry string)
}

// readlineSource adapts an ergochat/readline instance to LineSource.
// Auto-save is disabled on the instance: history entries are squeezed
// statements, not raw lines.
type readlineSource struct {
	rl *readline.Instance
}

func (r *readlineSource) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.ReadLine()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrInterrupted
	case errors.Is(err, io.EOF):
		return "", io.EOF
	}
	return line, err
}

func (r *readlineSource) AppendHistory(entry string) {
	_ = r.rl.SaveToHistory(entry)
}
