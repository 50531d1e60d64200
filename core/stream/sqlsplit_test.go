package stream

import "testing"

func TestCleanStatement(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain statement untouched",
			raw:  "INSERT INTO t VALUES (1)",
			want: "INSERT INTO t VALUES (1)",
		},
		{
			name: "leading comment lines stripped",
			raw:  "-- dump header\n-- generated by tool\nINSERT INTO t VALUES (1)",
			want: "INSERT INTO t VALUES (1)",
		},
		{
			name: "comment-only statement vanishes",
			raw:  "-- nothing here\n--  really",
			want: "",
		},
		{
			name: "whitespace trimmed",
			raw:  "  \n  INSERT INTO t VALUES (2)  \n",
			want: "INSERT INTO t VALUES (2)",
		},
		{
			name: "multi-line statement keeps inner lines",
			raw:  "INSERT INTO t (a, b)\nVALUES (1, 2)",
			want: "INSERT INTO t (a, b)\nVALUES (1, 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanStatement(tt.raw); got != tt.want {
				t.Errorf("CleanStatement(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsInsert(t *testing.T) {
	tests := []struct {
		stmt string
		want bool
	}{
		{"INSERT INTO t VALUES (1)", true},
		{"insert into t values (1)", true},
		{"  Insert INTO t VALUES (1)", true},
		{"CREATE TABLE t (id INTEGER)", false},
		{"BEGIN TRANSACTION", false},
		{"COMMIT", false},
		{"DROP TABLE t", false},
		{"UPDATE t SET a = 1", false},
		{"", false},
		{"INSERTX INTO t", false},
	}

	for _, tt := range tests {
		if got := IsInsert(tt.stmt); got != tt.want {
			t.Errorf("IsInsert(%q) = %v, want %v", tt.stmt, got, tt.want)
		}
	}
}
