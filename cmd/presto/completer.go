package main

import "strings"

// completions are the leading statement verbs and meta-commands. Verbs get
// a trailing space since more input always follows them.
var completions = []string{
	"describe ", "exit", "explain ", "help", "quit", "select ", "show ", "use ",
}

// consoleCompleter implements readline's AutoCompleter interface. Only the
// first word of a line is completed; everything after it is free-form SQL.
type consoleCompleter struct{}

// Do returns completion candidates for the current line/cursor position:
// the suffixes to append for each candidate and the length of the prefix
// being completed.
func (consoleCompleter) Do(line []rune, pos int) ([][]rune, int) {
	prefix := strings.ToLower(string(line[:pos]))
	if strings.ContainsAny(prefix, " \t") {
		return nil, 0
	}

	var out [][]rune
	for _, cand := range completions {
		if strings.HasPrefix(cand, prefix) && cand != prefix {
			out = append(out, []rune(cand[len(prefix):]))
		}
	}
	return out, len(prefix)
}
