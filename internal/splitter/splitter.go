// Package splitter finds statement boundaries in buffered console input.
//
// Terminator tokens only close a statement when they appear outside string
// literals, quoted identifiers, and comments, so a semicolon inside
// 'it''s;fine' never splits the statement. The splitter is purely lexical:
// it detects boundaries, it does not validate SQL.
package splitter

import "strings"

// Statement is one complete unit of input paired with the terminator token
// that closed it.
type Statement struct {
	Text       string
	Terminator string
}

// lexState tracks the quoting/comment context during a scan.
type lexState int

const (
	stateNormal lexState = iota
	stateSingleQuote
	stateDoubleQuote
	stateLineComment
	stateBlockComment
)

// Split partitions text into complete statements and a trailing partial.
// Statement text is trimmed and empty statements are suppressed, so a lone
// terminator executes nothing. The partial is the trimmed remainder after
// the last terminator; callers keep it buffered until a later line
// completes it. A nil terminator set defaults to ";".
func Split(text string, terminators []string) ([]Statement, string) {
	if len(terminators) == 0 {
		terminators = []string{";"}
	}

	var complete []Statement
	state := stateNormal
	start := 0
	i := 0
	for i < len(text) {
		if state == stateNormal {
			if term := matchTerminator(text[i:], terminators); term != "" {
				if stmt := strings.TrimSpace(text[start:i]); stmt != "" {
					complete = append(complete, Statement{Text: stmt, Terminator: term})
				}
				i += len(term)
				start = i
				continue
			}
		}

		switch state {
		case stateNormal:
			switch {
			case text[i] == '\'':
				state = stateSingleQuote
			case text[i] == '"':
				state = stateDoubleQuote
			case strings.HasPrefix(text[i:], "--"):
				state = stateLineComment
				i++
			case strings.HasPrefix(text[i:], "/*"):
				state = stateBlockComment
				i++
			}
			i++
		case stateSingleQuote:
			if text[i] == '\'' {
				if i+1 < len(text) && text[i+1] == '\'' {
					i++ // '' escape stays inside the literal
				} else {
					state = stateNormal
				}
			}
			i++
		case stateDoubleQuote:
			if text[i] == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					i++
				} else {
					state = stateNormal
				}
			}
			i++
		case stateLineComment:
			if text[i] == '\n' {
				state = stateNormal
			}
			i++
		case stateBlockComment:
			if strings.HasPrefix(text[i:], "*/") {
				state = stateNormal
				i += 2
			} else {
				i++
			}
		}
	}

	return complete, strings.TrimSpace(text[start:])
}

func matchTerminator(s string, terminators []string) string {
	for _, t := range terminators {
		if t != "" && strings.HasPrefix(s, t) {
			return t
		}
	}
	return ""
}

// Squeeze collapses whitespace runs (including the newlines introduced by
// multi-line buffering) into single spaces and trims the ends, for compact
// history entries. Idempotent.
func Squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
