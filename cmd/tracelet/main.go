package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "tracelet",
	Short: "Record and inspect Chrome trace event captures",
	Long:  `tracelet records profiling captures in the Chrome Trace Event Format and works with the resulting files.`,
}

func main() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) bool {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
}
