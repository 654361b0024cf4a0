package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/veritasos/ordem-backend/internal/auth"
	"github.com/veritasos/ordem-backend/internal/tokens"
)

// TokenCmd returns the token command.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate or inspect tokens",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "table",
		Short: "Generate a shared/master token pair for a table",
		Args:  cobra.NoArgs,
		RunE:  runTokenTable,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "character",
		Short: "Generate a character token",
		Args:  cobra.NoArgs,
		RunE:  runTokenCharacter,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check <token>",
		Short: "Validate and normalize a token typed by a player",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenCheck,
	})
	return cmd
}

func printToken(cmd *cobra.Command, label, token string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", label+":", token)
	fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", "", color.New(color.FgCyan).Sprint(tokens.Format(token, tokens.DefaultChunkSize)))
}

func runTokenTable(cmd *cobra.Command, args []string) error {
	pair, err := tokens.NewTableTokens()
	if err != nil {
		return err
	}
	printToken(cmd, "shared", pair.Shared)
	printToken(cmd, "master", pair.Master)
	return nil
}

func runTokenCharacter(cmd *cobra.Command, args []string) error {
	token, err := tokens.NewCharacterToken()
	if err != nil {
		return err
	}
	printToken(cmd, "character", token)
	return nil
}

func runTokenCheck(cmd *cobra.Command, args []string) error {
	if !tokens.IsValidFormat(args[0]) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %q\n", color.New(color.FgRed).Sprint("INVALID"), args[0])
		return fmt.Errorf("invalid token format")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgGreen).Sprint("OK"), tokens.Clean(args[0]))
	return nil
}

// HashPasswordCmd returns the hash-password command.
func HashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the stored salt:hash form of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
