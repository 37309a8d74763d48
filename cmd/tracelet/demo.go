package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tracelet/tracelet/pkg/profiler"
	"github.com/tracelet/tracelet/pkg/spool"
	"github.com/tracelet/tracelet/pkg/util/capture"
)

var (
	demoOutput  string
	demoWorkers int
	demoSpool   bool
)

func init() {
	demoCmd.Flags().StringVarP(&demoOutput, "output", "o", "trace.json", "file to write the capture to")
	demoCmd.Flags().IntVar(&demoWorkers, "workers", 3, "number of concurrent workers to simulate")
	demoCmd.Flags().BoolVar(&demoSpool, "spool", false, "write one binary segment per worker instead of merging")
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Record a synthetic capture",
	Long: `Runs a small synthetic workload and records it: nested durations on the
main goroutine, a handful of workers on forked profilers, and flow arrows
tying the handoffs together. Settings come from a tracelet.toml [capture]
section when one is found; flags override it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		processName := "tracelet demo"
		output := demoOutput
		workers := demoWorkers

		if path, ok, err := findTraceletToml("."); err != nil {
			return err
		} else if ok {
			cfg, meta, err := loadCaptureConfig(path)
			if err != nil {
				return err
			}
			if meta.IsDefined("capture", "process_name") {
				processName = cfg.Capture.ProcessName
			}
			if meta.IsDefined("capture", "workers") && !cmd.Flags().Changed("workers") {
				workers = cfg.Capture.Workers
			}
			if meta.IsDefined("capture", "output") && !cmd.Flags().Changed("output") {
				output = cfg.Capture.Output
			}
		}
		if workers < 1 {
			return fmt.Errorf("need at least 1 worker, got %d", workers)
		}

		p := profiler.New()
		p.CurrentProcessName(processName)
		p.CurrentThreadName("main")
		p.BeginDuration("demo")

		plan := profiler.BeginAndEndDuration(p, "plan workload", func() []uint64 {
			sizes := make([]uint64, workers)
			for i := range sizes {
				sizes[i] = uint64(200_000 * (i + 1))
			}
			return sizes
		})

		forks := make([]*profiler.Profiler, workers)
		var g errgroup.Group
		for w := 0; w < workers; w++ {
			w := w
			fork := p.Fork()
			forks[w] = fork
			id := p.BeginFlow("spawn worker", "demo_handoff")

			g.Go(func() error {
				fork.CurrentThreadName(fmt.Sprintf("worker-%d", w))
				fork.EndFlow("start work", "demo_handoff", id)

				fork.BeginDuration("work item")
				total := profiler.BeginAndEndDuration(fork, "crunch", func() uint64 {
					return sumTo(plan[w])
				})
				fork.EndDuration()

				if total == 0 {
					return fmt.Errorf("worker %d computed nothing", w)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		p.EndDuration()

		if demoSpool {
			dir := filepath.Dir(output)
			base := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
			for w, fork := range forks {
				segment := filepath.Join(dir, fmt.Sprintf("%s-worker-%d.mp", base, w))
				if err := spool.WriteSegment(segment, fork.Events()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d events)\n", segment, len(fork.Events()))
			}
		} else {
			for _, fork := range forks {
				p.Extend(fork.Events())
			}
		}

		if err := capture.SaveFile(output, p.Events()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d events)\n", output, len(p.Events()))
		return nil
	},
}

// sumTo burns a deterministic amount of CPU so the demo slices have width.
func sumTo(n uint64) uint64 {
	var total uint64
	for i := uint64(0); i < n; i++ {
		total += i
	}
	return total
}
