package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/tagpack-service/internal/middleware"
)

var (
	tokenSubject string
	tokenGroups  []string
	tokenRoles   []string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	Long: `Sign a token with auth.jwtSecret. Groups widen which private tags the
holder can see; the curator role allows uploading packs.

Examples:
  tagpack token --subject alice --groups research
  tagpack token --subject ci --roles curator --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if tokenSubject == "" {
			return errors.New("--subject is required")
		}

		verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		token, err := verifier.Sign(tokenSubject, tokenGroups, tokenRoles, tokenTTL)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "token subject")
	tokenCmd.Flags().StringSliceVar(&tokenGroups, "groups", nil, "visibility groups")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "roles", nil, "roles, e.g. curator")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
