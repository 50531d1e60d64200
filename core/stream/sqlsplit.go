package stream

import "strings"

// CleanStatement strips single-line comments from a raw statement and trims
// surrounding whitespace. Returns "" when nothing meaningful remains.
func CleanStatement(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// IsInsert reports whether the statement's first keyword is INSERT,
// case-insensitively.
//
// The import path filters fail-open: dump files carry schema DDL and
// transaction control alongside data, and everything that is not a row
// insert is skipped silently rather than rejected.
func IsInsert(stmt string) bool {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return false
	}
	return strings.EqualFold(fields[0], "INSERT")
}
