package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

func checkFormat(format string) error {
	switch format {
	case "pretty", "json", "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

// printSummary writes the run summary; logPath is shown when a log file was written.
func printSummary(w io.Writer, res domain.ExportResult, logPath, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"report_id": res.ReportID,
			"report":    res.Report,
		}
		if logPath != "" {
			payload["log_path"] = logPath
		}
		return enc.Encode(payload)
	case "pretty", "":
		_, err := fmt.Fprintln(w, renderSummary(res, logPath))
		return err
	default:
		return checkFormat(format)
	}
}

func renderSummary(res domain.ExportResult, logPath string) string {
	r := res.Report

	duration := r.FinishedAt.Sub(r.StartedAt)
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		duration = 0
	}

	line := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-10s", label)) + " " + value
	}

	fallback := fmt.Sprintf("%d", r.Fallback)
	if r.Fallback > 0 {
		fallback = warnStyle.Render(fallback)
	}

	lines := []string{
		titleStyle.Render("Service domains exported"),
		"",
		line("Output", r.OutputPath),
		line("Domains", fmt.Sprintf("%d", r.Total)),
		line("Enriched", okStyle.Render(fmt.Sprintf("%d", r.Enriched))),
		line("N/A", fallback),
		line("Duration", duration.Round(time.Millisecond).String()),
	}
	if res.ReportID != "" {
		lines = append(lines, line("Report", res.ReportID))
	}
	if logPath != "" {
		lines = append(lines, line("Log", logPath))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
