package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/yourusername/sysdiag/core"
)

const (
	colorAccent  = lipgloss.Color("#06B6D4")
	colorGood    = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#EAB308")
	colorDanger  = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

// reportStyles are bound to one output so colors are dropped when it is not
// a terminal.
type reportStyles struct {
	title   lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
	width   int
}

func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		title: r.NewStyle().Bold(true).Foreground(colorAccent),
		section: r.NewStyle().Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorMuted).
			MarginTop(1),
		muted:   r.NewStyle().Foreground(colorMuted),
		good:    r.NewStyle().Foreground(colorGood),
		warning: r.NewStyle().Foreground(colorWarning),
		danger:  r.NewStyle().Bold(true).Foreground(colorDanger),
		width:   terminalWidth(),
	}
}

// terminalWidth falls back to 100 columns when stdout is not a terminal
func terminalWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 100
}

func (st reportStyles) health(status core.HealthStatus) lipgloss.Style {
	switch status {
	case core.HealthGood:
		return st.good
	case core.HealthFair:
		return st.warning
	default:
		return st.danger
	}
}

// RenderReport prints a human readable report. id may be empty.
func RenderReport(w io.Writer, report *core.AnalysisReport, id string) error {
	st := newReportStyles(w)
	var b strings.Builder

	title := "System Health Report"
	if id != "" {
		title += " " + id
	}
	b.WriteString(st.title.Render(title) + "\n")
	fmt.Fprintf(&b, "%s\n", st.muted.Render(fmt.Sprintf("Generated %s · %d samples · %s → %s (%s)",
		report.GeneratedAt.Format(time.RFC3339),
		report.DataPoints,
		report.TimeRange.Start.Format("15:04:05"),
		report.TimeRange.End.Format("15:04:05"),
		formatDuration(report.TimeRange.Duration),
	)))

	health := st.health(report.Health.Status)
	fmt.Fprintf(&b, "\nHealth: %s  %s\n",
		health.Render(fmt.Sprintf("%d/100", report.Health.Score)),
		health.Render(strings.ToUpper(string(report.Health.Status))))

	if len(report.Summary.CriticalIssues) > 0 {
		b.WriteString(st.section.Render("Critical issues") + "\n")
		for _, issue := range report.Summary.CriticalIssues {
			fmt.Fprintf(&b, "  %s %s\n", st.danger.Render("✗"), issue)
		}
	}
	if len(report.Summary.KeyFindings) > 0 {
		b.WriteString(st.section.Render("Key findings") + "\n")
		for _, finding := range report.Summary.KeyFindings {
			fmt.Fprintf(&b, "  • %s\n", finding)
		}
	}

	b.WriteString(st.section.Render("Resources") + "\n")
	fmt.Fprintf(&b, "  %-8s %8s %8s %8s %8s %-11s %s\n", "METRIC", "AVG", "MAX", "MIN", "STDDEV", "TREND", "HIGH")
	writeResourceRow(&b, "CPU", report.CPU.Stats, report.CPU.Trend, report.CPU.HighUsagePercent)
	writeResourceRow(&b, "Memory", report.Memory.Stats, report.Memory.Trend, report.Memory.HighUsagePercent)
	writeResourceRow(&b, "Disk", report.Disk.Stats, report.Disk.Trend, report.Disk.HighUsagePercent)
	fmt.Fprintf(&b, "  %s\n", st.muted.Render(fmt.Sprintf("load average %.2f · %d CPU spikes", report.CPU.LoadAverage, len(report.CPU.Spikes))))

	for _, leak := range report.Memory.LeakFindings {
		fmt.Fprintf(&b, "  %s %s\n", st.warning.Render("!"), leak.Description)
	}

	if len(report.Recommendations) > 0 {
		b.WriteString(st.section.Render("Recommendations") + "\n")
		for _, rec := range report.Recommendations {
			marker := st.warning.Render(string(rec.Priority))
			if rec.Priority == core.PriorityHigh {
				marker = st.danger.Render(string(rec.Priority))
			}
			fmt.Fprintf(&b, "  [%s] %s\n", marker, rec.Title)
			fmt.Fprintf(&b, "      %s\n", truncateString(rec.Description, st.width-6))
			for _, action := range rec.Actions {
				fmt.Fprintf(&b, "      - %s\n", truncateString(action, st.width-8))
			}
		}
	}

	if len(report.Anomalies) > 0 {
		b.WriteString(st.section.Render(fmt.Sprintf("Anomalies (%d)", len(report.Anomalies))) + "\n")
		for _, a := range report.Anomalies {
			fmt.Fprintf(&b, "  %s %-6s %-22s %6.1f%% (ref %.1f) #%d\n",
				a.Timestamp.Format("15:04:05"), a.Metric, a.Kind, a.Value, a.Reference, a.Index)
		}
	}

	if len(report.Processes.TopCPU) > 0 {
		b.WriteString(st.section.Render(fmt.Sprintf("Top processes (%d unique)", report.Processes.TotalUnique)) + "\n")
		fmt.Fprintf(&b, "  %-24s %8s %8s %8s %8s %5s %8s\n", "NAME", "AVG CPU", "MAX CPU", "AVG MEM", "MAX MEM", "SEEN", "SPAN")
		for _, p := range report.Processes.TopCPU {
			fmt.Fprintf(&b, "  %-24s %7.1f%% %7.1f%% %7.1f%% %7.1f%% %5d %8s\n",
				truncateString(p.Name, 24), p.AvgCPU, p.MaxCPU, p.AvgMemory, p.MaxMemory,
				p.InstanceCount, formatDuration(p.ObservedDuration))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeResourceRow(b *strings.Builder, name string, stats core.SeriesStats, trend core.TrendResult, high float64) {
	fmt.Fprintf(b, "  %-8s %7.1f%% %7.1f%% %7.1f%% %8.2f %-11s %.0f%%\n",
		name, stats.Mean, stats.Max, stats.Min, stats.StdDev, trend.Direction, high)
}

// RenderReportList prints archived report headers as a table
func RenderReportList(w io.Writer, headers []core.ReportHeader, total int) error {
	st := newReportStyles(w)
	var b strings.Builder

	if len(headers) == 0 {
		b.WriteString(st.muted.Render("No archived reports") + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%-36s  %-19s  %7s  %-9s  %7s  %s\n", "ID", "GENERATED", "SAMPLES", "STATUS", "SCORE", "WINDOW")
	for _, h := range headers {
		status := st.health(h.HealthStatus).Render(fmt.Sprintf("%-9s", h.HealthStatus))
		fmt.Fprintf(&b, "%-36s  %-19s  %7d  %s  %7d  %s\n",
			h.ID,
			h.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
			h.DataPoints,
			status,
			h.HealthScore,
			formatDuration(h.End.Sub(h.Start)),
		)
	}
	b.WriteString(st.muted.Render(fmt.Sprintf("Showing %d of %d reports", len(headers), total)) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// formatDuration formats time duration in human readable format
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	}
}

// formatBytes formats a byte count with a binary unit
func formatBytes(bytes uint64) string {
	const unit = 1024
	switch {
	case bytes >= unit*unit*unit*unit:
		return fmt.Sprintf("%.2fTB", float64(bytes)/(unit*unit*unit*unit))
	case bytes >= unit*unit*unit:
		return fmt.Sprintf("%.2fGB", float64(bytes)/(unit*unit*unit))
	case bytes >= unit*unit:
		return fmt.Sprintf("%.1fMB", float64(bytes)/(unit*unit))
	default:
		return fmt.Sprintf("%.1fKB", float64(bytes)/unit)
	}
}

func truncateString(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
