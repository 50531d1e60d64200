package formatters

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Values coming back from the store's HTTP interface are JSON-typed: nil,
// json.Number (decoders run with UseNumber), bool, string, and the odd
// object/array. The formatters below map those onto each output grammar.

// FormatCSVValue renders a value as one CSV field. Quoting is left to the
// CSV writer; this only decides the textual content.
func FormatCSVValue(val any) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case string:
		return v

	case json.Number:
		return v.String()

	case bool:
		if v {
			return "true"
		}
		return "false"

	case float64:
		return fmt.Sprintf("%.15g", v)

	case map[string]any, []any:
		// Object-typed values render as a JSON string
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)

	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatSQLValue renders a value as a SQL literal for INSERT output:
// NULL unquoted, numerics unquoted, booleans as 1/0, everything else
// single-quoted with internal quotes doubled.
func FormatSQLValue(val any) string {
	if val == nil {
		return "NULL"
	}

	switch v := val.(type) {
	case json.Number:
		return v.String()

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)

	case float32, float64:
		return fmt.Sprintf("%.15g", val)

	case bool:
		if v {
			return "1"
		}
		return "0"

	case string:
		return quoteSQLString(v)

	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return "NULL"
		}
		return quoteSQLString(string(b))

	default:
		return quoteSQLString(fmt.Sprintf("%v", v))
	}
}

// FormatXLSXValue renders a value for an Excel cell.
func FormatXLSXValue(val any) any {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()

	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)

	default:
		return v
	}
}

// QuoteIdent double-quotes an identifier, escaping embedded quotes.
// Dotted names quote each part separately.
func QuoteIdent(s string) string {
	parts := strings.Split(s, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

func quoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
