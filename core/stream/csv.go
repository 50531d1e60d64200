package stream

import "strings"

// ParseLine splits one logical line of delimited text into field values.
//
// It runs a two-state quote machine: outside quotes the separator ends a
// field and a quote opens quoted mode; inside quotes a doubled quote emits
// one literal quote and everything else, separators included, is copied
// verbatim. Whitespace outside quotes is trimmed from field edges.
//
// Malformed quoting is not rejected: an unterminated quote is closed
// implicitly at end of line. Lenient by choice, matching how real-world
// spreadsheet exports behave.
func ParseLine(line string, sep rune) []string {
	var fields []string
	var buf []rune
	var quotedAt []bool // tracks which runes were inside quotes
	inQuotes := false

	flush := func() {
		fields = append(fields, trimUnquoted(buf, quotedAt))
		buf = buf[:0]
		quotedAt = quotedAt[:0]
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					buf = append(buf, '"')
					quotedAt = append(quotedAt, true)
					i++
					continue
				}
				inQuotes = false
				continue
			}
			buf = append(buf, ch)
			quotedAt = append(quotedAt, true)
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case sep:
			flush()
		default:
			buf = append(buf, ch)
			quotedAt = append(quotedAt, false)
		}
	}
	flush()

	return fields
}

// trimUnquoted removes leading/trailing whitespace that sat outside quotes,
// preserving whitespace that was quoted.
func trimUnquoted(buf []rune, quotedAt []bool) string {
	start, end := 0, len(buf)
	for start < end && !quotedAt[start] && isSpace(buf[start]) {
		start++
	}
	for end > start && !quotedAt[end-1] && isSpace(buf[end-1]) {
		end--
	}
	return string(buf[start:end])
}

func isSpace(r rune) bool {
	return strings.ContainsRune(" \t\r\n\v\f", r)
}
