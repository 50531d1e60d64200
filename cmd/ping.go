package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/qvx-labs/rqport/internal/logger"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := connectStore()
		if err != nil {
			return err
		}
		defer store.Close()

		start := time.Now()
		if err := store.Ping(context.Background()); err != nil {
			return err
		}
		logger.Success("Store at %s:%d is reachable (%v)", cfg.Host, cfg.Port, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
