package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"arcx/internal/archive"
	"arcx/pkg/asset"
)

type SummaryRow struct {
	Label string
	Value string
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

// RenderCategories renders the per-category breakdown of a run. Categories
// with no files are left out.
func RenderCategories(stats *archive.Stats) string {
	lines := []string{headerStyle.Render("By category")}

	for _, category := range asset.Categories() {
		cs := stats.ByCategory[category]
		if cs.Count == 0 {
			continue
		}
		line := fmt.Sprintf("  %-8s %4d file(s)  %10s", category, cs.Count, FormatBytes(cs.Original))
		if cs.Compressed > 0 {
			line += fmt.Sprintf(" -> %s", FormatBytes(cs.Compressed))
		}
		lines = append(lines, labelStyle.Render(line))
	}

	if len(lines) == 1 {
		lines = append(lines, dimStyle.Render("  (no files)"))
	}
	return strings.Join(lines, "\n")
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle  = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)
