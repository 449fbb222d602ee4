package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"arcx/internal/archive"
	"arcx/internal/tui"
	"arcx/pkg/asset"
)

var scanReport string

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Inventory an asset tree without compressing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, stats, errs, err := archive.Scan(args[0])
		if err != nil {
			return err
		}

		byCategory := make(map[asset.Category][]archive.ScanEntry)
		for _, entry := range entries {
			byCategory[entry.Category] = append(byCategory[entry.Category], entry)
		}

		for _, category := range asset.Categories() {
			list := byCategory[category]
			if len(list) == 0 {
				continue
			}
			cs := stats.ByCategory[category]
			header := fmt.Sprintf("%s (%d files, %s)", category, cs.Count, tui.FormatBytes(cs.Original))
			fmt.Fprintf(os.Stdout, "%s\n", scanCategoryStyle.Render(header))
			for _, entry := range list {
				fmt.Fprintf(os.Stdout, "  %s %s %s\n",
					scanBulletStyle.Render("-"),
					scanValueStyle.Render(entry.Path),
					scanDimStyle.Render(tui.FormatBytes(entry.Size)),
				)
			}
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stdout, scanDimStyle.Render("no files found"))
		}

		fmt.Fprintln(os.Stdout, tui.RenderSummary([]tui.SummaryRow{
			{Label: "Files", Value: fmt.Sprintf("%d", stats.TotalFiles)},
			{Label: "Total size", Value: tui.FormatBytes(stats.OriginalBytes)},
		}))

		for _, rec := range errs {
			fmt.Fprintf(os.Stdout, "%s\n", scanDimStyle.Render("skipped "+rec.String()))
		}

		if scanReport != "" {
			if err := writeScanReport(scanReport, entries, stats); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Report written to: %s\n", displayPath(scanReport))
		}
		return nil
	},
}

func writeScanReport(path string, entries []archive.ScanEntry, stats *archive.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "arcx scan report - %s\n\n", time.Now().Format(time.RFC3339))
	for _, category := range asset.Categories() {
		cs := stats.ByCategory[category]
		fmt.Fprintf(f, "%-8s %d files, %d bytes\n", category, cs.Count, cs.Original)
	}
	fmt.Fprintln(f)
	for _, entry := range entries {
		fmt.Fprintf(f, "%s\t%s\t%d\n", entry.Category, entry.Path, entry.Size)
	}
	return nil
}

var (
	scanCategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	scanValueStyle    = lipgloss.NewStyle().Foreground(tui.ColorInk)
	scanDimStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	scanBulletStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	scanCmd.Flags().StringVar(&scanReport, "report", "", "also write the inventory to this file as plain text")

	rootCmd.AddCommand(scanCmd)
}
