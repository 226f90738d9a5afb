package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/police-case-api/api"
	"github.com/linesmerrill/police-case-api/models"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an access token for a user",
	Long: `token signs a bearer token with the configured secret. Identity lives
outside this service, so this is how operators hand out access.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, _ := cmd.Flags().GetString("sub")
		roles, _ := cmd.Flags().GetStringSlice("roles")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		superuser, _ := cmd.Flags().GetBool("superuser")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if sub == "" {
			return fmt.Errorf("--sub is required")
		}
		if ttl <= 0 {
			ttl = conf.Auth.TokenTTL
		}

		actor := models.Actor{ID: sub, Name: name, Email: email, Superuser: superuser}
		for _, r := range roles {
			if r = strings.TrimSpace(r); r != "" {
				actor.Roles = append(actor.Roles, models.ParseRole(r))
			}
		}

		token, err := api.NewAuthenticator(conf.Auth.JWTSecret, nil).Issue(actor, ttl)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("sub", "", "user id")
	tokenCmd.Flags().StringSlice("roles", nil, "comma separated roles, e.g. Officer,Detective")
	tokenCmd.Flags().String("name", "", "display name")
	tokenCmd.Flags().String("email", "", "email for notification mail")
	tokenCmd.Flags().Bool("superuser", false, "grant every role")
	tokenCmd.Flags().Duration("ttl", 0, "token lifetime (default auth.token_ttl)")
}
