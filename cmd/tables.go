package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qvx-labs/rqport/internal/logger"
)

var tablesWithCounts bool

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables in the store",
	Example: `  rqport tables
  rqport tables --counts`,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().BoolVar(&tablesWithCounts, "counts", false, "Include a row count per table")
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	store, _, err := connectStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	names, err := store.Tables(ctx)
	if err != nil {
		return fmt.Errorf("unable to list tables: %w", err)
	}
	if len(names) == 0 {
		logger.Warn("The store has no tables")
		return nil
	}

	if !tablesWithCounts {
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, name := range names {
		count, err := store.Count(ctx, name)
		if err != nil {
			return fmt.Errorf("unable to count %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%d\n", name, count)
	}
	return w.Flush()
}
