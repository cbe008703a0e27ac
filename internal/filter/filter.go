// Package filter extracts the inline "filter with" directive that attaches
// a client-side row filter to a console command.
package filter

import "strings"

// Marker separates a base command from its trailing filter expression.
// Matched case-insensitively, first occurrence wins.
const Marker = "filter with"

// Directive is a base command paired with the filter expression that was
// attached to it. The directive is scoped to the statements executed from
// the line it was extracted from.
type Directive struct {
	Base string
	Expr string
}

// Extract splits line at the first occurrence of Marker. The base command
// is truncated at its own terminator if present and re-terminated, so it
// always reads as a single complete statement downstream. Returns false
// when the line carries no directive; the line then passes through
// unchanged.
func Extract(line string) (Directive, bool) {
	idx := markerIndex(line)
	if idx < 0 {
		return Directive{}, false
	}
	base := line[:idx]
	if cut := strings.Index(base, ";"); cut >= 0 {
		base = base[:cut]
	}
	return Directive{
		Base: strings.TrimSpace(base) + ";",
		Expr: strings.TrimSpace(line[idx+len(Marker):]),
	}, true
}

// markerIndex finds the first occurrence of Marker, folding ASCII case byte
// by byte. Lowercasing the whole line would be wrong here: some non-ASCII
// runes change byte length under case folding, which would shift the index
// relative to the original line.
func markerIndex(line string) int {
	for i := 0; i+len(Marker) <= len(line); i++ {
		j := 0
		for j < len(Marker) {
			c := line[i+j]
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			if c != Marker[j] {
				break
			}
			j++
		}
		if j == len(Marker) {
			return i
		}
	}
	return -1
}
