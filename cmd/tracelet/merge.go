package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracelet/tracelet/pkg/profiler"
	"github.com/tracelet/tracelet/pkg/util/capture"
)

var mergeOutput string

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.json", "file to write the merged document to")
}

var mergeCmd = &cobra.Command{
	Use:   "merge <file>...",
	Short: "Merge captures and segments into one document",
	Long: `Reads any number of captures, in any supported encoding, and writes a
single JSON document holding their events in argument order. The usual
way to reassemble the per-worker segments that demo --spool leaves
behind.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		merged := profiler.New()
		for _, path := range args {
			log, err := readCapture(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			merged.Extend(log)
		}

		if err := capture.SaveFile(mergeOutput, merged.Events()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d events)\n", mergeOutput, len(merged.Events()))
		return nil
	},
}
