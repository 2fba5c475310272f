// Package ui renders human-facing CLI output: per-dataset run summaries and
// the cache status table.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/textage/internal/cache"
	"github.com/papapumpkin/textage/internal/pipeline"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorSuccess = lipgloss.Color("#00E676")
	colorDanger  = lipgloss.Color("#FF5252")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

const (
	iconDone   = "✓"
	iconFailed = "✗"
	iconCached = "·"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(colorSuccess)
	styleFailed = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
)

// Printer writes formatted output to W.
type Printer struct {
	W io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{W: w}
}

// RunSummary prints one line per dataset followed by a totals line.
func (p *Printer) RunSummary(rep *pipeline.Report) {
	for _, o := range rep.Outcomes {
		if !o.OK() {
			fmt.Fprintf(p.W, "%s %s %s\n", styleFailed.Render(iconFailed), pad(o.Dataset, 10), styleFailed.Render(o.Err.Error()))
			continue
		}
		icon := styleOK.Render(iconDone)
		if o.Source == pipeline.FromCache {
			icon = styleMuted.Render(iconCached)
		}
		fmt.Fprintf(p.W, "%s %s %6d entries  %s  %s\n",
			icon, pad(o.Dataset, 10), o.Entries, pad(string(o.Source), 7), styleMuted.Render(o.Path))
	}

	ok := len(rep.Outcomes) - rep.Failed()
	totals := fmt.Sprintf("%d ok, %d failed in %s", ok, rep.Failed(), rep.Elapsed.Round(time.Millisecond))
	if rep.Failed() > 0 {
		fmt.Fprintln(p.W, styleFailed.Render(totals))
		return
	}
	fmt.Fprintln(p.W, styleOK.Render(totals))
}

// StatusRow is one line of the cache status table.
type StatusRow struct {
	Dataset string
	Entry   cache.Entry
}

// Status prints the freshness, age and path of each cache artifact.
func (p *Printer) Status(rows []StatusRow) {
	fmt.Fprintln(p.W, styleHeader.Render(fmt.Sprintf("%s %s %s %s", pad("DATASET", 10), pad("STATE", 8), pad("AGE", 12), "PATH")))
	for _, r := range rows {
		state := pad(r.Entry.State.String(), 8)
		age := "-"
		switch {
		case !r.Entry.Exists:
			state = styleMuted.Render(pad("missing", 8))
		case r.Entry.State == cache.Fresh:
			state = styleOK.Render(state)
			age = FormatAge(r.Entry.Age)
		default:
			state = styleFailed.Render(state)
			age = FormatAge(r.Entry.Age)
		}
		fmt.Fprintf(p.W, "%s %s %s %s\n", pad(r.Dataset, 10), state, pad(age, 12), r.Entry.Path)
	}
}

// Error prints an error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.W, "%s %s\n", styleFailed.Render("error:"), msg)
}

// FormatAge renders an artifact age compactly, e.g. "3h12m" or "2d4h".
func FormatAge(d time.Duration) string {
	if d < 0 {
		return "future"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd%dh", days, int(d.Hours())%24)
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
