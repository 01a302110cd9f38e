package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/inkpub/micropub/internal/database"
	"github.com/inkpub/micropub/internal/revocation"
	"github.com/spf13/cobra"
)

var (
	revokeRedis    string
	revokePassword string
	revokeTTL      time.Duration
)

var revokeCmd = &cobra.Command{
	Use:   "revoke [token]",
	Short: "Add an access token to the revocation list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := revokeRedis
		if addr == "" {
			host := os.Getenv("REDIS_HOST")
			if host == "" {
				return fmt.Errorf("--redis or REDIS_HOST is required")
			}
			port := firstNonEmpty(os.Getenv("REDIS_PORT"), "6379")
			addr = host + ":" + port
		}
		ctx := context.Background()
		client, err := database.ConnectRedis(ctx, addr, firstNonEmpty(revokePassword, os.Getenv("REDIS_PASSWORD")), 0, 5*time.Second)
		if err != nil {
			return err
		}
		defer client.Close()
		revocation.SetClient(client)
		if err := revocation.Revoke(ctx, args[0], revokeTTL); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "token revoked")
		return nil
	},
}

func init() {
	revokeCmd.Flags().StringVar(&revokeRedis, "redis", "", "Redis address host:port (default $REDIS_HOST:$REDIS_PORT)")
	revokeCmd.Flags().StringVar(&revokePassword, "redis-password", "", "Redis password (default $REDIS_PASSWORD)")
	revokeCmd.Flags().DurationVar(&revokeTTL, "ttl", 0, "how long to keep the entry; 0 keeps it forever")
	rootCmd.AddCommand(revokeCmd)
}
