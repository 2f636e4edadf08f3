package transfer

import "strings"

// SplitStatements splits a blob of SQL text into individual semicolon-
// terminated statements. Semicolons inside single- or double-quoted string
// literals never produce a boundary; backslash escapes and doubled-quote
// escapes are copied through verbatim. Text from a -- marker to the end of
// the line (newline included) is dropped.
//
// Block comments (/* */) are not recognized and pass through as statement
// content. An unterminated string literal swallows the rest of the input,
// trailing semicolons included; the scan just ends in string mode.
func SplitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	quoteChar := byte(0)

	for i := 0; i < len(script); i++ {
		c := script[i]

		if inString {
			if c == '\\' {
				// Escape passthrough: copy the backslash and whatever
				// follows without treating it as a terminator.
				current.WriteByte(c)
				if i+1 < len(script) {
					i++
					current.WriteByte(script[i])
				}
				continue
			}

			current.WriteByte(c)

			if c == quoteChar {
				if i+1 < len(script) && script[i+1] == quoteChar {
					// Doubled quote stays inside the string
					i++
					current.WriteByte(script[i])
					continue
				}
				inString = false
			}
			continue
		}

		if c == '-' && i+1 < len(script) && script[i+1] == '-' {
			// Line comment: skip to and including the next newline
			for i < len(script) && script[i] != '\n' {
				i++
			}
			continue
		}

		if c == '\'' || c == '"' {
			inString = true
			quoteChar = c
			current.WriteByte(c)
			continue
		}

		if c == ';' {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}

		current.WriteByte(c)
	}

	stmt := strings.TrimSpace(current.String())
	if stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}
