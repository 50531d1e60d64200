package cmd

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/qvx-labs/rqport/core/db"
	"github.com/qvx-labs/rqport/core/formatters"
	"github.com/qvx-labs/rqport/core/validation"
	"github.com/qvx-labs/rqport/internal/logger"
)

var queryAssoc bool

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a read-only query and print the result",
	Long: `Query executes a single read-only statement (SELECT, WITH, PRAGMA or
EXPLAIN) against the store. Output is CSV by default; --assoc prints one JSON
object per row with keys in column order.`,
	Example: `  rqport query "SELECT * FROM users WHERE active = 1"
  rqport query -c strong "SELECT COUNT(*) FROM orders"
  rqport query --assoc "SELECT * FROM users" | jq .name`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryAssoc, "assoc", false, "Print rows as JSON objects instead of CSV")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	sql := args[0]
	if err := validation.ValidateQuery(sql); err != nil {
		return err
	}

	store, cfg, err := connectStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rs, err := store.Query(context.Background(), db.Statement{SQL: sql}, cfg.Consistency)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryAssoc {
		if err := printAssoc(rs); err != nil {
			return err
		}
	} else {
		if err := printCSV(rs); err != nil {
			return err
		}
	}

	logger.Debug("Query returned %d rows", len(rs.Rows))
	return nil
}

func printCSV(rs *db.ResultSet) error {
	w := csv.NewWriter(os.Stdout)
	if len(rs.Columns) > 0 {
		if err := w.Write(rs.Columns); err != nil {
			return err
		}
	}
	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = formatters.FormatCSVValue(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// printAssoc emits one JSON object per row, keys in column order. Objects
// are assembled by hand so the column order survives serialization.
func printAssoc(rs *db.ResultSet) error {
	w := bufio.NewWriter(os.Stdout)
	for _, row := range rs.Rows {
		w.WriteByte('{')
		for i, col := range rs.Columns {
			if i > 0 {
				w.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return err
			}
			var v any
			if i < len(row) {
				v = row[i]
			}
			val, err := json.Marshal(v)
			if err != nil {
				return err
			}
			w.Write(key)
			w.WriteByte(':')
			w.Write(val)
		}
		w.WriteString("}\n")
	}
	return w.Flush()
}
