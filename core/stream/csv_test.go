package stream

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		sep  rune
		want []string
	}{
		{
			name: "plain fields",
			line: "1,Alice,true",
			sep:  ',',
			want: []string{"1", "Alice", "true"},
		},
		{
			name: "quoted field with separator inside",
			line: `2,"Bob, Jr.",false`,
			sep:  ',',
			want: []string{"2", "Bob, Jr.", "false"},
		},
		{
			name: "doubled quotes emit literal quote",
			line: `3,"Carol ""C""",x`,
			sep:  ',',
			want: []string{"3", `Carol "C"`, "x"},
		},
		{
			name: "whitespace outside quotes trimmed",
			line: `  1 ,  hello world  , "  padded  " `,
			sep:  ',',
			want: []string{"1", "hello world", "  padded  "},
		},
		{
			name: "empty fields preserved",
			line: "a,,c",
			sep:  ',',
			want: []string{"a", "", "c"},
		},
		{
			name: "trailing separator yields empty last field",
			line: "a,b,",
			sep:  ',',
			want: []string{"a", "b", ""},
		},
		{
			name: "unterminated quote closes at end of line",
			line: `1,"no closing quote`,
			sep:  ',',
			want: []string{"1", "no closing quote"},
		},
		{
			name: "semicolon separator",
			line: `x;"y;z";w`,
			sep:  ';',
			want: []string{"x", "y;z", "w"},
		},
		{
			name: "single field",
			line: "only",
			sep:  ',',
			want: []string{"only"},
		},
		{
			name: "multibyte content",
			line: `désir,"日本, 語"`,
			sep:  ',',
			want: []string{"désir", "日本, 語"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line, tt.sep)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
