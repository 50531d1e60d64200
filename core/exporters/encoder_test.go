package exporters

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/elliotchance/orderedmap/v3"
	json "github.com/goccy/go-json"
)

func makeRow(pairs ...any) *Row {
	m := orderedmap.NewOrderedMap[string, any]()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func TestCSVEncoder(t *testing.T) {
	tests := []struct {
		name      string
		options   Options
		columns   []string
		rows      []*Row
		checkFunc func(t *testing.T, out string)
	}{
		{
			name:    "basic output with header",
			options: Options{},
			columns: []string{"id", "name"},
			rows: []*Row{
				makeRow("id", json.Number("1"), "name", "Alice"),
				makeRow("id", json.Number("2"), "name", "Bob"),
			},
			checkFunc: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				if len(lines) != 3 {
					t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
				}
				if lines[0] != "id,name" {
					t.Errorf("header = %q", lines[0])
				}
				if lines[1] != "1,Alice" {
					t.Errorf("row 1 = %q", lines[1])
				}
			},
		},
		{
			name:    "values needing quotes",
			options: Options{},
			columns: []string{"name"},
			rows: []*Row{
				makeRow("name", `Carol "C"`),
				makeRow("name", "Bob, Jr."),
			},
			checkFunc: func(t *testing.T, out string) {
				r := csv.NewReader(strings.NewReader(out))
				records, err := r.ReadAll()
				if err != nil {
					t.Fatalf("output is not valid CSV: %v", err)
				}
				if records[1][0] != `Carol "C"` {
					t.Errorf("quoted value round-trip failed: %q", records[1][0])
				}
				if records[2][0] != "Bob, Jr." {
					t.Errorf("separator value round-trip failed: %q", records[2][0])
				}
			},
		},
		{
			name:    "nil renders empty, objects render as JSON",
			options: Options{},
			columns: []string{"a", "b"},
			rows: []*Row{
				makeRow("a", nil, "b", map[string]any{"k": "v"}),
			},
			checkFunc: func(t *testing.T, out string) {
				r := csv.NewReader(strings.NewReader(out))
				records, err := r.ReadAll()
				if err != nil {
					t.Fatalf("output is not valid CSV: %v", err)
				}
				if records[1][0] != "" {
					t.Errorf("nil field = %q, want empty", records[1][0])
				}
				if records[1][1] != `{"k":"v"}` {
					t.Errorf("object field = %q", records[1][1])
				}
			},
		},
		{
			name:    "no header option",
			options: Options{NoHeader: true},
			columns: []string{"id"},
			rows:    []*Row{makeRow("id", json.Number("7"))},
			checkFunc: func(t *testing.T, out string) {
				if strings.TrimSpace(out) != "7" {
					t.Errorf("output = %q, want just the data row", out)
				}
			},
		},
		{
			name:    "custom delimiter",
			options: Options{Delimiter: ';'},
			columns: []string{"a", "b"},
			rows:    []*Row{makeRow("a", "x", "b", "y")},
			checkFunc: func(t *testing.T, out string) {
				if !strings.Contains(out, "x;y") {
					t.Errorf("expected semicolon delimiter, got %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := Get(FormatCSV, &buf, tt.options)
			if err != nil {
				t.Fatalf("Get(csv) error: %v", err)
			}
			if err := enc.Begin(tt.columns); err != nil {
				t.Fatalf("Begin() error: %v", err)
			}
			if err := enc.EncodeBatch(tt.rows); err != nil {
				t.Fatalf("EncodeBatch() error: %v", err)
			}
			if err := enc.End(); err != nil {
				t.Fatalf("End() error: %v", err)
			}
			tt.checkFunc(t, buf.String())
		})
	}
}

func TestSQLEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := Get(FormatSQL, &buf, Options{TableName: "users"})
	if err != nil {
		t.Fatalf("Get(sql) error: %v", err)
	}

	if err := enc.Begin([]string{"id", "name", "active", "meta"}); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	rows := []*Row{
		makeRow("id", json.Number("1"), "name", "O'Brien", "active", true, "meta", nil),
		makeRow("id", json.Number("2"), "name", "plain", "active", false, "meta", map[string]any{"x": 1}),
	}
	if err := enc.EncodeBatch(rows); err != nil {
		t.Fatalf("EncodeBatch() error: %v", err)
	}
	if err := enc.End(); err != nil {
		t.Fatalf("End() error: %v", err)
	}

	out := buf.String()

	if !strings.HasPrefix(out, `-- Export of table "users"`) {
		t.Errorf("missing header comment, got: %q", out[:40])
	}
	if !strings.Contains(out, "-- Generated: ") {
		t.Error("missing generation timestamp comment")
	}
	if !strings.Contains(out, `INSERT INTO "users" ("id", "name", "active", "meta") VALUES (1, 'O''Brien', 1, NULL);`) {
		t.Errorf("row 1 INSERT malformed:\n%s", out)
	}
	if !strings.Contains(out, ", 0, ") {
		t.Error("boolean false should render as 0")
	}
}

func TestSQLEncoderRequiresTable(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Get(FormatSQL, &buf, Options{}); err == nil {
		t.Fatal("expected an error when table name is missing")
	}
}

func TestXLSXEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := Get(FormatXLSX, &buf, Options{})
	if err != nil {
		t.Fatalf("Get(xlsx) error: %v", err)
	}

	if err := enc.Begin([]string{"id", "name"}); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if err := enc.EncodeBatch([]*Row{
		makeRow("id", json.Number("1"), "name", "Alice"),
	}); err != nil {
		t.Fatalf("EncodeBatch() error: %v", err)
	}
	if err := enc.End(); err != nil {
		t.Fatalf("End() error: %v", err)
	}

	if buf.Len() == 0 {
		t.Fatal("workbook output is empty")
	}
	// XLSX files are zip archives
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("output does not look like a zip archive")
	}
}

func TestRegistryList(t *testing.T) {
	formats := List()
	for _, want := range []string{FormatCSV, FormatSQL, FormatXLSX} {
		found := false
		for _, f := range formats {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("format %q not registered (got %v)", want, formats)
		}
	}

	if _, err := Get("parquet", &bytes.Buffer{}, Options{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}
