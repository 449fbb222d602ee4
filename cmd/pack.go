package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"arcx/internal/archive"
	"arcx/internal/tui"
	"arcx/pkg/asset"
	"arcx/pkg/codec"
)

var (
	packOutput     string
	packTreeOut    string
	packLevel      int
	packCodec      string
	packWorkers    int
	packErrorLog   string
	packNoProgress bool
)

var packCmd = &cobra.Command{
	Use:   "pack [flags] <dir>",
	Short: "Compress an asset tree into a .arcx container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcDir := args[0]
		if packOutput != "" && packTreeOut != "" {
			return fmt.Errorf("--output cannot be used with --tree-out")
		}

		policy, err := packPolicy()
		if err != nil {
			return err
		}

		codecName := packCodec
		if codecName == "" {
			codecName = cfg.Codec
		}
		c, err := codec.ForName(codecName)
		if err != nil {
			return err
		}

		workers := packWorkers
		if workers == 0 {
			workers = cfg.Workers
		}

		opts := archive.Options{
			Workers: workers,
			Codec:   c,
			Logger:  engineLogger(packNoProgress),
		}

		if packErrorLog != "" {
			f, err := os.Create(packErrorLog)
			if err != nil {
				return err
			}
			defer f.Close()
			opts.ErrorLog = f
		}

		var updates chan archive.Progress
		uiDone := make(chan struct{})
		if packNoProgress {
			close(uiDone)
		} else {
			updates = make(chan archive.Progress, 64)
			opts.OnProgress = func(p archive.Progress) { updates <- p }
			program := tea.NewProgram(tui.NewModel(updates))
			go func() {
				_, _ = program.Run()
				close(uiDone)
			}()
		}

		var (
			stats  *archive.Stats
			errs   []archive.ErrorRecord
			dest   string
			runErr error
		)
		if packTreeOut != "" {
			dest = packTreeOut
			stats, errs, runErr = archive.CompressTree(srcDir, dest, policy, opts)
		} else {
			dest = packOutput
			if dest == "" {
				abs, err := filepath.Abs(srcDir)
				if err != nil {
					return err
				}
				dest = filepath.Base(abs) + ".arcx"
			}
			_, stats, errs, runErr = archive.Build(srcDir, dest, policy, opts)
		}

		if updates != nil {
			close(updates)
		}
		<-uiDone
		if runErr != nil {
			return runErr
		}

		rows := []tui.SummaryRow{
			{Label: "Files archived", Value: fmt.Sprintf("%d", stats.TotalFiles)},
			{Label: "Failed", Value: fmt.Sprintf("%d", stats.FailedFiles)},
			{Label: "Original size", Value: tui.FormatBytes(stats.OriginalBytes)},
			{Label: "Compressed size", Value: tui.FormatBytes(stats.CompressedBytes)},
			{Label: "Ratio", Value: fmt.Sprintf("%.1f%%", stats.Ratio()*100)},
			{Label: "Elapsed", Value: stats.Elapsed.Round(time.Millisecond).String()},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		fmt.Fprintln(os.Stdout, tui.RenderCategories(stats))

		if packTreeOut != "" {
			fmt.Fprintf(os.Stdout, "Compressed tree written to: %s\n", displayPath(dest))
		} else {
			fmt.Fprintf(os.Stdout, "Archive written to: %s\n", displayPath(dest))
		}
		reportFailures(errs, packErrorLog)

		return nil
	},
}

func packPolicy() (asset.Policy, error) {
	if packLevel != 0 {
		if packLevel < asset.MinLevel || packLevel > asset.MaxLevel {
			return asset.Policy{}, fmt.Errorf("--level must be between %d and %d", asset.MinLevel, asset.MaxLevel)
		}
		return asset.ManualPolicy(packLevel), nil
	}
	return cfg.Policy()
}

func reportFailures(errs []archive.ErrorRecord, logPath string) {
	if len(errs) == 0 {
		return
	}
	if logPath != "" {
		fmt.Fprintf(os.Stdout, "%d file(s) failed; details in %s\n", len(errs), logPath)
		return
	}
	fmt.Fprintf(os.Stdout, "%d file(s) failed:\n", len(errs))
	for _, rec := range errs {
		fmt.Fprintf(os.Stdout, "  %s\n", rec)
	}
}

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "container file to write (default <dir>.arcx)")
	packCmd.Flags().StringVar(&packTreeOut, "tree-out", "", "write a compressed tree to this directory instead of a container")
	packCmd.Flags().IntVarP(&packLevel, "level", "l", 0, "force one compression level 1-22 for every file (default: per-type levels)")
	packCmd.Flags().StringVar(&packCodec, "codec", "", "compression codec: "+strings.Join(codec.Names(), ", "))
	packCmd.Flags().IntVarP(&packWorkers, "workers", "w", 0, "concurrent workers")
	packCmd.Flags().StringVar(&packErrorLog, "error-log", "", "write per-file failures to this file")
	packCmd.Flags().BoolVar(&packNoProgress, "no-progress", false, "disable the progress display")

	rootCmd.AddCommand(packCmd)
}
