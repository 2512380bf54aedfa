// graylogic-av-token mints and checks bearer tokens for the Gray Logic AV API.
//
// The signing secret comes from the service configuration (or
// GRAYLOGIC_AV_JWT_SECRET), so tokens issued here are accepted by a
// graylogic-av instance using the same config.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-av/internal/auth"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "graylogic-av-token",
		Short:        "Issue and verify Gray Logic AV API tokens",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Config file path")

	var (
		subject string
		role    string
		ttl     time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := loadSecret(configPath)
			if err != nil {
				return err
			}
			return issueToken(cmd.OutOrStdout(), subject, auth.Role(role), secret, ttl)
		},
	}
	issueCmd.Flags().StringVar(&subject, "subject", "", "Token subject (panel or operator name)")
	issueCmd.Flags().StringVar(&role, "role", string(auth.RoleOperator), "Role: viewer, operator or admin")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = issueCmd.MarkFlagRequired("subject")

	verifyCmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a bearer token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := loadSecret(configPath)
			if err != nil {
				return err
			}
			return verifyToken(cmd.OutOrStdout(), args[0], secret)
		},
	}

	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "List roles and their permissions",
		Run: func(cmd *cobra.Command, _ []string) {
			printRoles(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(issueCmd, verifyCmd, rolesCmd)
	return rootCmd
}

// loadSecret reads the JWT signing secret from the service config.
func loadSecret(path string) (string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	if cfg.Security.JWT.Secret == "" {
		return "", auth.ErrEmptySecret
	}
	return cfg.Security.JWT.Secret, nil
}

func issueToken(w io.Writer, subject string, role auth.Role, secret string, ttl time.Duration) error {
	token, err := auth.IssueToken(subject, role, secret, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func verifyToken(w io.Writer, token, secret string) error {
	claims, err := auth.ParseToken(token, secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "subject: %s\nrole:    %s\nexpires: %s\n",
		claims.Subject, claims.Role, claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	return err
}

func printRoles(w io.Writer) {
	for _, r := range auth.ValidRoles {
		fmt.Fprintf(w, "  %-9s", r)
		for i, p := range auth.PermissionsForRole(r) {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprint(w, p)
		}
		fmt.Fprintln(w)
	}
}
