package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tracelet/tracelet/pkg/profiler"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Verify a capture balances its durations and flows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := readCapture(args[0])
		if err != nil {
			return err
		}

		if err := profiler.Validate(log); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		verdict := fmt.Sprint
		if useColor(cmd) {
			verdict = color.New(color.FgGreen, color.Bold).Sprint
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v %v events balance\n", verdict("ok:"), len(log))
		return nil
	},
}
