// internal/cli/token.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/utils"
)

// AdminTokenCmd returns the admin-token command
func AdminTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     int
	)

	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Mint a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.JWT.AccessTokenTTL
			}

			utils.SetJWTSecret(cfg.JWT.SecretKey)
			token, err := utils.GenerateAdminToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "ops", "Who the token is issued to")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "Lifetime in hours (default from JWT_ACCESS_TTL)")

	return cmd
}
