package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/veritasos/ordem-backend/internal/dice"
)

// RollCmd returns the roll command.
func RollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll <score>",
		Short: "Roll an attribute test (score d20, keep the highest)",
		Long: `Roll as many d20 as the attribute score and keep the highest.

A score of 0 or less rolls a single fixed 1.

Usage:
  ordemctl roll 3`,
		Args: cobra.ExactArgs(1),
		RunE: runRoll,
	}
}

func runRoll(cmd *cobra.Command, args []string) error {
	score, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("score must be an integer: %q", args[0])
	}
	if score > dice.MaxDice {
		return fmt.Errorf("score must be at most %d", dice.MaxDice)
	}

	res := dice.RollAttribute(score)
	highlighted := false
	parts := make([]string, len(res.Rolls))
	for i, r := range res.Rolls {
		s := strconv.Itoa(r)
		if r == res.Highest && !highlighted {
			s = color.New(color.FgGreen, color.Bold).Sprint(s)
			highlighted = true
		}
		parts[i] = s
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rolls:   [%s]\n", strings.Join(parts, " "))
	fmt.Fprintf(out, "Result:  %d\n", res.Highest)
	fmt.Fprintf(out, "Total:   %d\n", res.Total)
	return nil
}
