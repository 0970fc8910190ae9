// Statement splitter: turns a migration's raw schema text into an ordered
// list of statements the store can execute one at a time. Trigger bodies
// carry their own terminators, so the scan is block-aware.
package migrate

import "strings"

// SplitStatements scans schema text line by line and returns the contained
// statements in order, each with its trailing terminator stripped.
//
// A statement normally ends at a line whose last character is ';'. Inside a
// procedural block (a line ending in the BEGIN keyword) terminators belong
// to the body; only the matching END closes the statement. A depth counter
// tracks nesting: BEGIN increments, END decrements, and the statement ends
// when depth returns to zero. Comment lines ("--") and blank lines are
// skipped. A non-empty tail without a trailing terminator is emitted as a
// final statement.
func SplitStatements(text string) []string {
	var stmts []string
	var buf strings.Builder
	depth := 0

	flush := func() {
		s := strings.TrimSpace(buf.String())
		buf.Reset()
		s = strings.TrimSuffix(s, ";")
		if s != "" {
			stmts = append(stmts, s)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		upper := strings.ToUpper(trimmed)
		switch {
		case upper == "BEGIN" || strings.HasSuffix(upper, " BEGIN"):
			depth++
		case upper == "END" || upper == "END;":
			// Only a bare END closes a block; END inside an expression
			// (e.g. CASE ... END) never stands alone on its line.
			if depth > 0 {
				depth--
			}
			if depth == 0 && strings.HasSuffix(upper, ";") {
				flush()
			}
		case depth == 0 && strings.HasSuffix(trimmed, ";"):
			flush()
		}
	}

	// Tail without a trailing terminator.
	flush()

	return stmts
}
