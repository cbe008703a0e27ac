package executor

import (
	"fmt"
	"strconv"
	"strings"
)

// formatAligned renders a bordered table. The row-count footer is only
// written for interactive sessions so batch output stays machine-friendly.
func formatAligned(columns []string, rows [][]string, footer bool) string {
	if len(columns) == 0 {
		return "(0 rows)\n"
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	sep := buildSeparator(widths)

	b.WriteString(sep)
	b.WriteByte('|')
	for i, c := range columns {
		fmt.Fprintf(&b, " %-*s |", widths[i], c)
	}
	b.WriteByte('\n')
	b.WriteString(sep)

	for _, row := range rows {
		b.WriteByte('|')
		for i, cell := range row {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteByte('\n')
	}

	b.WriteString(sep)

	if footer {
		if n := len(rows); n == 1 {
			b.WriteString("(1 row)\n")
		} else {
			fmt.Fprintf(&b, "(%d rows)\n", n)
		}
	}

	return b.String()
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		for j := 0; j < w+2; j++ {
			b.WriteByte('-')
		}
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

// formatVertical renders one column per line per row, with right-aligned
// column names, the way mysql renders \G-terminated statements.
func formatVertical(columns []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(0 rows)\n"
	}

	width := 0
	for _, c := range columns {
		if len(c) > width {
			width = len(c)
		}
	}

	var b strings.Builder
	for n, row := range rows {
		fmt.Fprintf(&b, "*************************** %d. row ***************************\n", n+1)
		for i, cell := range row {
			fmt.Fprintf(&b, "%*s: %s\n", width, columns[i], cell)
		}
	}
	return b.String()
}

// --- client-side row filter ---

// Two-character operators come first so "<=" is never read as "<".
var filterOps = []string{"<=", ">=", "!=", "<>", "=", "<", ">"}

// applyFilter keeps only the rows matching a "column op value" expression.
func applyFilter(columns []string, rows [][]string, expr string) ([][]string, error) {
	col, op, val, err := parseFilter(expr)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range columns {
		if strings.EqualFold(c, col) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("filter references unknown column %q", col)
	}

	var out [][]string
	for _, row := range rows {
		if matchFilter(row[idx], op, val) {
			out = append(out, row)
		}
	}
	return out, nil
}

// parseFilter splits "column op value". A trailing statement terminator is
// tolerated because the expression is typed at the end of a command line.
func parseFilter(expr string) (col, op, val string, err error) {
	expr = strings.TrimSpace(expr)
	expr = strings.TrimSpace(strings.TrimSuffix(expr, ";"))
	for _, candidate := range filterOps {
		idx := strings.Index(expr, candidate)
		if idx <= 0 {
			continue
		}
		col = strings.TrimSpace(expr[:idx])
		val = strings.TrimSpace(expr[idx+len(candidate):])
		val = strings.Trim(val, "'")
		if col == "" || val == "" {
			break
		}
		return col, candidate, val, nil
	}
	return "", "", "", fmt.Errorf("malformed filter expression %q (want: column op value)", expr)
}

// matchFilter compares numerically when both sides parse as numbers,
// otherwise as strings.
func matchFilter(cell, op, val string) bool {
	a, errA := strconv.ParseFloat(cell, 64)
	b, errB := strconv.ParseFloat(val, 64)
	if errA == nil && errB == nil {
		switch op {
		case "=":
			return a == b
		case "!=", "<>":
			return a != b
		case "<":
			return a < b
		case "<=":
			return a <= b
		case ">":
			return a > b
		case ">=":
			return a >= b
		}
		return false
	}

	switch op {
	case "=":
		return cell == val
	case "!=", "<>":
		return cell != val
	case "<":
		return cell < val
	case "<=":
		return cell <= val
	case ">":
		return cell > val
	case ">=":
		return cell >= val
	}
	return false
}
