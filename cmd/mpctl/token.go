package main

import (
	"fmt"
	"os"
	"time"

	"github.com/inkpub/micropub/internal/tokens"
	"github.com/spf13/cobra"
)

var (
	tokenSecret   string
	tokenMe       string
	tokenClientID string
	tokenScope    string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an HS256 access token",
	Long:  `Token prints a signed access token for the publisher, using JWT_SECRET and PUBLICATION_ME unless flags override them.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := firstNonEmpty(tokenSecret, os.Getenv("JWT_SECRET"))
		me := firstNonEmpty(tokenMe, os.Getenv("PUBLICATION_ME"))
		if me == "" {
			return fmt.Errorf("--me or PUBLICATION_ME is required")
		}
		tok, err := tokens.Generate(secret, me, tokenClientID, tokenScope, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "signing secret (default $JWT_SECRET)")
	tokenCmd.Flags().StringVar(&tokenMe, "me", "", "publisher URL (default $PUBLICATION_ME)")
	tokenCmd.Flags().StringVar(&tokenClientID, "client-id", "", "client_id claim")
	tokenCmd.Flags().StringVar(&tokenScope, "scope", "create update delete media", "space separated scopes")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 90*24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
