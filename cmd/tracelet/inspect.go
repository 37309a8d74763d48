package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tracelet/tracelet/pkg/events"
	tio "github.com/tracelet/tracelet/pkg/io"
	"github.com/tracelet/tracelet/pkg/spool"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarise a capture file",
	Long: `Reads a capture in any of the supported encodings (JSON object, bare
JSON array, or a binary spool segment) and prints what it holds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := readCapture(args[0])
		if err != nil {
			return err
		}

		heading := fmt.Sprint
		if useColor(cmd) {
			heading = color.New(color.FgCyan, color.Bold).Sprint
		}

		counts := map[events.Phase]int{}
		var metadata []string
		var minTs, maxTs uint64
		sawTs := false
		observe := func(ts uint64) {
			if !sawTs || ts < minTs {
				minTs = ts
			}
			if !sawTs || ts > maxTs {
				maxTs = ts
			}
			sawTs = true
		}
		for _, ev := range log {
			counts[ev.Phase()]++
			switch ev := ev.(type) {
			case *events.DurationBegin:
				observe(ev.Timestamp)
			case *events.DurationEnd:
				observe(ev.Timestamp)
			case *events.Complete:
				observe(ev.Timestamp)
				observe(ev.Timestamp + ev.Duration)
			case *events.Metadata:
				metadata = append(metadata, fmt.Sprintf("%v = %q", ev.Name, ev.Args.Name))
			case *events.FlowBegin:
				observe(ev.Timestamp)
			case *events.FlowEnd:
				observe(ev.Timestamp)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%v %v\n", heading("capture:"), args[0])
		fmt.Fprintf(out, "%v %v\n", heading("events:"), len(log))
		if sawTs {
			fmt.Fprintf(out, "%v %v us\n", heading("span:"), maxTs-minTs)
		}

		phases := make([]string, 0, len(counts))
		for phase := range counts {
			phases = append(phases, string(phase))
		}
		sort.Strings(phases)
		for _, phase := range phases {
			fmt.Fprintf(out, "  %4d x %q\n", counts[events.Phase(phase)], phase)
		}

		sort.Strings(metadata)
		for _, md := range metadata {
			fmt.Fprintf(out, "%v %v\n", heading("metadata:"), md)
		}
		return nil
	},
}

// readCapture loads a trace log from disk, sniffing the encoding: spool
// segments by their .mp extension, JSON documents by their first byte.
func readCapture(path string) ([]events.Event, error) {
	if filepath.Ext(path) == ".mp" {
		return spool.ReadSegment(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	first, err := firstByte(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}

	var doc *tio.Document
	if first == '[' {
		doc, err = tio.ParseJsonArray(reader)
	} else {
		doc, err = tio.ParseJson(reader)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse capture: %w", err)
	}
	return doc.Events(), nil
}

// firstByte peeks past leading whitespace without consuming anything.
func firstByte(reader *bufio.Reader) (byte, error) {
	for skip := 0; ; skip++ {
		peeked, err := reader.Peek(skip + 1)
		if err != nil {
			return 0, err
		}
		switch c := peeked[skip]; c {
		case ' ', '\t', '\r', '\n':
		default:
			return c, nil
		}
	}
}
