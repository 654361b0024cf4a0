package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/veritasos/ordem-backend/internal/auth"
	"github.com/veritasos/ordem-backend/internal/campaign"
	"github.com/veritasos/ordem-backend/internal/config"
	"github.com/veritasos/ordem-backend/internal/db"
)

// openStore connects to the configured database, installs it as db.DB and
// migrates every model.
func openStore() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, err := db.Open(cfg.DBOptions())
	if err != nil {
		return err
	}
	db.DB = conn

	if err := auth.Migrate(); err != nil {
		return fmt.Errorf("migrate auth: %w", err)
	}
	if err := campaign.Migrate(); err != nil {
		return fmt.Errorf("migrate campaign: %w", err)
	}
	return nil
}

// MigrateCmd returns the migrate command.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openStore(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema up to date\n", color.New(color.FgGreen).Sprint("✓"))
			return nil
		},
	}
}

// SeedCmd returns the seed command.
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default master user when missing",
		Long: `Migrate the database and create a master user.

Usage:
  ordemctl seed
  ordemctl seed --username narradora --password outra-senha`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}
	cmd.Flags().String("username", auth.DefaultMasterUsername, "Master username")
	cmd.Flags().String("password", auth.DefaultMasterPassword, "Master password")
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if err := openStore(); err != nil {
		return err
	}

	user, created, err := auth.EnsureMaster(cmd.Context(), username, password)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "%s master %q already exists\n", color.New(color.FgBlue).Sprint("EXISTS"), user.Username)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s master %q (id %d)\n", color.New(color.FgGreen).Sprint("CREATE"), user.Username, user.ID)
	if password == auth.DefaultMasterPassword {
		fmt.Fprintf(cmd.OutOrStdout(), "%s change the default password before going live\n", color.New(color.FgYellow).Sprint("!"))
	}
	return nil
}
