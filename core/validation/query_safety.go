package validation

import (
	"fmt"
	"strings"
)

// Read-only statement verbs accepted by ValidateQuery. WITH covers CTEs,
// PRAGMA and EXPLAIN are harmless introspection.
var allowedVerbs = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"PRAGMA":  true,
	"EXPLAIN": true,
}

// ValidateQuery rejects statements that could write through the read-only
// query path. It strips comments and string literals first so a verb hidden
// in either can't fool the check, then whitelists on the leading keyword.
func ValidateQuery(query string) error {
	stripped := stripCommentsAndStrings(query)

	stmts := splitOnSemicolons(stripped)
	if len(stmts) == 0 {
		return fmt.Errorf("query cannot be empty")
	}
	if len(stmts) > 1 {
		return fmt.Errorf("only a single SQL statement is allowed")
	}

	verb := firstKeyword(stmts[0])
	if verb == "" {
		return fmt.Errorf("unable to identify the SQL command")
	}
	if !allowedVerbs[verb] {
		return fmt.Errorf("%s is not allowed here (read-only: SELECT, WITH, PRAGMA, EXPLAIN)", verb)
	}
	return nil
}

// stripCommentsAndStrings blanks out -- and /* */ comments plus single- and
// double-quoted literals, replacing their content with spaces so keyword
// boundaries survive.
func stripCommentsAndStrings(query string) string {
	var b strings.Builder
	b.Grow(len(query))

	const (
		code = iota
		lineComment
		blockComment
		singleQuoted
		doubleQuoted
	)
	state := code

	for i := 0; i < len(query); i++ {
		c := query[i]
		next := byte(0)
		if i+1 < len(query) {
			next = query[i+1]
		}

		switch state {
		case code:
			switch {
			case c == '-' && next == '-':
				state = lineComment
				i++
			case c == '/' && next == '*':
				state = blockComment
				i++
			case c == '\'':
				state = singleQuoted
				b.WriteByte(' ')
			case c == '"':
				state = doubleQuoted
				b.WriteByte(' ')
			default:
				b.WriteByte(c)
			}

		case lineComment:
			if c == '\n' {
				state = code
				b.WriteByte('\n')
			}

		case blockComment:
			if c == '*' && next == '/' {
				state = code
				i++
			}

		case singleQuoted:
			if c == '\'' {
				if next == '\'' { // escaped quote stays inside the literal
					i++
					continue
				}
				state = code
			}
			b.WriteByte(' ')

		case doubleQuoted:
			if c == '"' {
				if next == '"' {
					i++
					continue
				}
				state = code
			}
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func splitOnSemicolons(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstKeyword(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimRight(fields[0], "(,"))
}
