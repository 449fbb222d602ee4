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
)

var (
	unpackOutput     string
	unpackWorkers    int
	unpackErrorLog   string
	unpackNoProgress bool
)

var unpackCmd = &cobra.Command{
	Use:   "unpack [flags] <archive>",
	Short: "Extract a .arcx container back into a directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archivePath := args[0]
		if !strings.HasSuffix(archivePath, ".arcx") {
			archivePath += ".arcx"
		}

		dest := unpackOutput
		if dest == "" {
			dest = strings.TrimSuffix(filepath.Base(archivePath), ".arcx")
		}

		workers := unpackWorkers
		if workers == 0 {
			workers = cfg.Workers
		}

		opts := archive.Options{
			Workers: workers,
			Logger:  engineLogger(unpackNoProgress),
		}

		if unpackErrorLog != "" {
			f, err := os.Create(unpackErrorLog)
			if err != nil {
				return err
			}
			defer f.Close()
			opts.ErrorLog = f
		}

		var updates chan archive.Progress
		uiDone := make(chan struct{})
		if unpackNoProgress {
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

		stats, errs, runErr := archive.Extract(archivePath, dest, opts)

		if updates != nil {
			close(updates)
		}
		<-uiDone
		if runErr != nil {
			return runErr
		}

		rows := []tui.SummaryRow{
			{Label: "Files extracted", Value: fmt.Sprintf("%d", stats.TotalFiles)},
			{Label: "Failed", Value: fmt.Sprintf("%d", stats.FailedFiles)},
			{Label: "Bytes restored", Value: tui.FormatBytes(stats.OriginalBytes)},
			{Label: "Elapsed", Value: stats.Elapsed.Round(time.Millisecond).String()},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		fmt.Fprintln(os.Stdout, tui.RenderCategories(stats))

		fmt.Fprintf(os.Stdout, "Extracted to: %s\n", displayPath(dest))
		reportFailures(errs, unpackErrorLog)

		return nil
	},
}

func init() {
	unpackCmd.Flags().StringVarP(&unpackOutput, "output", "o", "", "destination directory (default: archive name without .arcx)")
	unpackCmd.Flags().IntVarP(&unpackWorkers, "workers", "w", 0, "concurrent workers")
	unpackCmd.Flags().StringVar(&unpackErrorLog, "error-log", "", "write per-file failures to this file")
	unpackCmd.Flags().BoolVar(&unpackNoProgress, "no-progress", false, "disable the progress display")

	rootCmd.AddCommand(unpackCmd)
}
