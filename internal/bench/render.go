package bench

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
)

// Render writes the throughput and latency tables for results.
func Render(w io.Writer, cfg Config, results []Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}

	fastest := results[0].TotalTime
	for _, r := range results {
		if r.Rank == 1 {
			fastest = r.TotalTime
		}
	}

	printSectionHeader(w, "THROUGHPUT",
		fmt.Sprintf("%s jobs of %q work per pool size", FormatNumber(cfg.Jobs), cfg.Work))

	throughput := tablewriter.NewWriter(w)
	throughput.Header("Rank", "Workers", "Total Time", "Jobs/sec", "vs Fastest")
	for _, r := range results {
		_ = throughput.Append(
			fmt.Sprintf("%d", r.Rank),
			fmt.Sprintf("%d", r.Size),
			r.TotalTime.Round(time.Millisecond).String(),
			FormatNumber(int(r.Throughput)),
			vsFastest(r.TotalTime, fastest, r.Rank),
		)
	}
	if err := throughput.Render(); err != nil {
		return fmt.Errorf("rendering throughput table: %w", err)
	}

	printSectionHeader(w, "LATENCY",
		"Time from submission to job completion (lower is better)")

	latency := tablewriter.NewWriter(w)
	latency.Header("Workers", "P50", "P95", "P99", "Panicked")
	for _, r := range results {
		_ = latency.Append(
			fmt.Sprintf("%d", r.Size),
			FormatLatency(r.P50),
			FormatLatency(r.P95),
			FormatLatency(r.P99),
			fmt.Sprintf("%d", r.Panicked),
		)
	}
	if err := latency.Render(); err != nil {
		return fmt.Errorf("rendering latency table: %w", err)
	}

	_, _ = green.Fprintf(w, "\nBenchmarked %d pool sizes\n", len(results))
	return nil
}

func vsFastest(total, fastest time.Duration, rank int) string {
	if rank == 1 || fastest == 0 {
		return "baseline"
	}
	return fmt.Sprintf("%.2fx slower", float64(total)/float64(fastest))
}

func printSectionHeader(w io.Writer, title string, descriptions ...string) {
	rule := strings.Repeat("═", 59)
	_, _ = fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, rule)
	_, _ = bold.Fprintln(w, title)
	_, _ = bold.Fprintln(w, rule)
	for _, desc := range descriptions {
		_, _ = fmt.Fprintln(w, desc)
	}
	_, _ = fmt.Fprintln(w)
}

// FormatNumber inserts thousands separators.
func FormatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			_, _ = result.WriteString(",")
		}
		_, _ = result.WriteString(string(c))
	}
	return result.String()
}

// FormatLatency formats a duration in the most appropriate unit.
func FormatLatency(d time.Duration) string {
	if d == 0 {
		return "0"
	}

	ns := d.Nanoseconds()
	switch {
	case ns < 1000:
		return fmt.Sprintf("%dns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.1fµs", float64(ns)/1000.0)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2fms", float64(ns)/1_000_000.0)
	default:
		return fmt.Sprintf("%.2fs", float64(ns)/1_000_000_000.0)
	}
}
