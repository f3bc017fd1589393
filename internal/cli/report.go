package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/format"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/aristath/stoxy/internal/reliability"
	"github.com/aristath/stoxy/internal/state"
)

// StatusReport is everything the status command prints
type StatusReport struct {
	UserID    int64
	Data      state.Data
	Outcome   reconciler.Outcome
	StorageKB float64
	LastSync  time.Time // zero when the store was never written
}

// StatusMarkdown renders r as a markdown document
func StatusMarkdown(r StatusReport) string {
	var b strings.Builder
	d := r.Data
	cur := d.Settings.Currency

	fmt.Fprintf(&b, "# Portfolio of user %d\n\n", r.UserID)
	fmt.Fprintf(&b, "**Total:** %s  \n", format.Currency(d.Portfolio.TotalValue.Float(), cur))
	fmt.Fprintf(&b, "**Today:** %s (%s)  \n",
		format.SignedCurrency(d.Portfolio.TodayGain.Float(), cur),
		format.Percentage(d.Portfolio.TodayGainPercent.Float()))
	fmt.Fprintf(&b, "**Stocks:** %s, **Crypto:** %s\n\n",
		format.Currency(d.Portfolio.Stocks.Float(), cur),
		format.Currency(d.Portfolio.Crypto.Float(), cur))

	b.WriteString("## Holdings\n\n")
	if len(d.Holdings) == 0 {
		b.WriteString("No positions.\n\n")
	} else {
		b.WriteString("| Symbol | Name | Quantity | Value | Change |\n")
		b.WriteString("|---|---|--:|--:|--:|\n")
		for _, h := range d.Holdings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				h.Symbol, escape(h.Name),
				format.Compact(h.Quantity.Float()),
				format.Currency(h.Value.Float(), cur),
				format.Percentage(h.ChangePercent.Float()))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Alerts\n\n")
	if len(d.Alerts) == 0 {
		b.WriteString("No alerts.\n\n")
	} else {
		for _, a := range d.Alerts {
			status := "active"
			switch {
			case a.Triggered:
				status = "triggered"
			case !a.Active:
				status = "paused"
			}
			fmt.Fprintf(&b, "- %s (%s)\n", alertLine(a), status)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Sync\n\n")
	fmt.Fprintf(&b, "- Market: %s\n", marketLabel(d.Market))
	for _, res := range sortedResources(r.Outcome) {
		fmt.Fprintf(&b, "- %s: %s\n", res, r.Outcome.Source(res))
	}
	fmt.Fprintf(&b, "- Local store: %.1f KB\n", r.StorageKB)
	if r.LastSync.IsZero() {
		b.WriteString("- Last sync: never\n")
	} else {
		fmt.Fprintf(&b, "- Last sync: %s\n", r.LastSync.Local().Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func alertLine(a domain.Alert) string {
	switch a.Condition {
	case domain.ConditionChange:
		return fmt.Sprintf("%s moves more than %.2f%%", a.Symbol, a.Value.Float())
	case domain.ConditionBelow:
		return fmt.Sprintf("%s below %.2f", a.Symbol, a.Value.Float())
	default:
		return fmt.Sprintf("%s above %.2f", a.Symbol, a.Value.Float())
	}
}

func marketLabel(m domain.MarketStatus) string {
	if m.Label != "" {
		return m.Label
	}
	if m.Open {
		return "open"
	}
	return "closed"
}

func sortedResources(o reconciler.Outcome) []reconciler.Resource {
	out := make([]reconciler.Resource, 0, len(o.Sources))
	for r := range o.Sources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// escape keeps table cells on one column
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Row is a label and a rendered value
type Row struct {
	Label string
	Value string
}

// TableMarkdown renders a titled two-column table
func TableMarkdown(title string, rows []Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n| | |\n|---|--:|\n", title)
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", escape(r.Label), escape(r.Value))
	}
	return b.String()
}

// BackupsMarkdown lists stored backups, newest first
func BackupsMarkdown(backups []reliability.BackupInfo) string {
	if len(backups) == 0 {
		return "# Backups\n\nNo backups stored.\n"
	}
	sorted := append([]reliability.BackupInfo(nil), backups...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.After(sorted[j].Timestamp) })

	var b strings.Builder
	b.WriteString("# Backups\n\n| Key | Created | Size |\n|---|---|--:|\n")
	for _, bk := range sorted {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", bk.Key, bk.Timestamp.Format("2006-01-02 15:04"), format.Compact(float64(bk.SizeBytes)))
	}
	return b.String()
}
