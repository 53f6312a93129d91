// Package main implements the entry point for the findmypet API server,
// a lost-and-found pet bulletin board. It exposes the serve, migrate and
// create-admin commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

// run executes the command tree with a context cancelled on SIGINT or SIGTERM.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. Every command loads configuration
// from the environment, an optional .env file and an optional config.yaml.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "findmypet",
		Short:        "Lost-and-found pet bulletin board API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateAdminCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), args[0])
		},
	}
}

func newCreateAdminCmd() *cobra.Command {
	opts := adminOptions{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the administrator account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Password == "" {
				return fmt.Errorf("--password is required")
			}
			return runCreateAdmin(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", defaultAdminUsername, "admin username")
	cmd.Flags().StringVar(&opts.Email, "email", defaultAdminEmail, "admin email")
	cmd.Flags().StringVar(&opts.Password, "password", os.Getenv("FINDMYPET_ADMIN_PASSWORD"),
		"admin password (defaults to $FINDMYPET_ADMIN_PASSWORD)")
	return cmd
}
