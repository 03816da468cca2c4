package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "match <message>",
		Short: "Rank a message against the sample guideline catalog",
		Long: `Runs the lexical matching pipeline offline against the seeded MidHome catalog.

Examples:
  match "¿Cuánto cuesta el alquiler?"
  match "quiero verlo" --context "¿hay pisos disponibles en el centro?"
  match "tengo una avería" --turns 4 --all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.message = args[0]
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.context, "context", "c", nil, "earlier user message, oldest first (repeatable)")
	cmd.Flags().IntVarP(&opts.turns, "turns", "n", 1, "repeat the message to watch fatigue lower repeated guidelines")
	cmd.Flags().IntVarP(&opts.top, "top", "k", 3, "guidelines selected per turn")
	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 30, "minimum score for a match")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "print the score of every guideline")
	return cmd
}
