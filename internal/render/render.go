// Package render formats shard data for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/dadukhankevin/Glance/internal/health"
	"github.com/dadukhankevin/Glance/internal/model"
	"github.com/dadukhankevin/Glance/internal/shards"
	"github.com/dadukhankevin/Glance/internal/store"
)

// diffContext is the number of context lines in drift diffs.
const diffContext = 3

// Status maps a health status to its display color.
func Status(status health.Status) *color.Color {
	switch status {
	case health.StatusHealthy:
		return color.New(color.FgGreen)
	case health.StatusDegraded:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// CreateResult prints the outcome of a capture.
func CreateResult(w io.Writer, res *shards.CreateResult) {
	verb := "Created"
	if res.Action == "updated" {
		verb = "Refreshed"
	}
	color.New(color.FgGreen).Fprintf(w, "%s shard %s\n", verb, res.ShardID)

	fmt.Fprintf(w, "  %s:%s", res.File, res.Lines)
	if res.Construct != "" {
		fmt.Fprintf(w, "  (%s)", res.Construct)
	}
	fmt.Fprintln(w)

	if len(res.Tags) > 0 {
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(res.Tags, ", "))
	}
	if !res.HasSummary {
		fmt.Fprintln(w, "  no summary; raw content will be shown on view")
	}
}

// ViewResult prints a view pass shard by shard. When showDiff is set, each
// drifted shard gets a unified diff from its captured region to the live one.
func ViewResult(w io.Writer, result *shards.ViewResult, showDiff bool) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No shards matched.")
		return
	}

	for i := range result.Shards {
		entry := &result.Shards[i]
		if i > 0 {
			fmt.Fprintln(w)
		}

		header := fmt.Sprintf("%s  %s", entry.ShardID, entry.File)
		if entry.Lines != "" {
			header += ":" + entry.Lines
		}
		if len(entry.Tags) > 0 {
			header += "  [" + strings.Join(entry.Tags, ", ") + "]"
		}
		fmt.Fprintln(w, header)

		Status(entry.Health.Status).Fprintf(w, "  %s (%.2f)  %s\n",
			entry.Health.Status, entry.Health.Score, entry.Health.Message)

		switch {
		case entry.Summary != "":
			fmt.Fprintln(w, indent(entry.Summary))
		case entry.Content != "":
			fmt.Fprintln(w, indent(entry.Content))
		}

		if entry.Note != "" {
			fmt.Fprintln(w, "  note: "+entry.Note)
		}
		if entry.Tip != "" {
			fmt.Fprintln(w, "  tip: "+entry.Tip)
		}
		if entry.ActionRequired != "" {
			color.New(color.FgRed).Fprintln(w, "  "+entry.ActionRequired)
		}

		if showDiff {
			if diff := DriftDiff(entry.File, entry.Original, entry.Live); diff != "" {
				fmt.Fprintln(w, indent(diff))
			}
		}
	}

	fmt.Fprintf(w, "\n%d of %d shard(s) shown.\n", result.Count, result.Total)
	if result.More != "" {
		fmt.Fprintln(w, result.More)
	}
	if result.Attention != "" {
		color.New(color.FgYellow).Fprintln(w, result.Attention)
	}
	if result.Deleted != "" {
		color.New(color.FgRed).Fprintln(w, result.Deleted)
	}
}

// DriftDiff renders a unified diff from the captured region to what the
// anchor resolves to now. Empty when nothing drifted.
func DriftDiff(file, original, live string) string {
	if original == live {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(original),
		B:        splitLinesKeepNL(live),
		FromFile: file + " (captured)",
		ToFile:   file + " (now)",
		Context:  diffContext,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return strings.TrimRight(text, "\n")
}

// ShardTable prints shards as a compact table, oldest first.
func ShardTable(w io.Writer, items []model.Shard) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No shards stored.")
		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"ID", "FILE", "LINES", "TAGS", "CREATED", "LAST VIEWED"})

	for _, sh := range items {
		lines := ""
		if sh.Anchor.LineStart > 0 {
			lines = fmt.Sprintf("%d-%d", sh.Anchor.LineStart, sh.Anchor.LineEnd)
		}
		lastViewed := "never"
		if sh.LastViewed != nil {
			lastViewed = humanize.Time(*sh.LastViewed)
		}
		tbl.AppendRow(table.Row{
			sh.ID, sh.File, lines, strings.Join(sh.Tags, ", "),
			humanize.Time(sh.CreatedAt), lastViewed,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(items))})
	fmt.Fprintln(w, tbl.Render())
}

// TagTable prints tags ranked by recent activity.
func TagTable(w io.Writer, infos []store.TagInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "No tags yet.")
		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"TAG", "SHARDS", "LAST ACTIVITY"})
	for _, info := range infos {
		tbl.AppendRow(table.Row{info.Tag, info.ShardCount, humanize.Time(info.LastActivity)})
	}
	fmt.Fprintln(w, tbl.Render())
}

// TagMatches prints tag search results in rank order.
func TagMatches(w io.Writer, matches []shards.TagMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No tags matched.")
		return
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"TAG", "SHARDS"})
	for _, m := range matches {
		tbl.AppendRow(table.Row{m.Tag, m.ShardCount})
	}
	fmt.Fprintln(w, tbl.Render())
}

// StatsReport prints database statistics.
func StatsReport(w io.Writer, stats *store.Stats) {
	fmt.Fprintf(w, "Database: %s (%s)\n", stats.DBPath, humanize.IBytes(uint64(stats.DBSizeBytes)))
	fmt.Fprintf(w, "Shards: %d total, %d with summaries, %d flagged stale\n",
		stats.TotalShards, stats.WithSummary, stats.FlaggedStale)
	fmt.Fprintf(w, "Tags: %d\n", stats.TagCount)

	if len(stats.Files) == 0 {
		return
	}
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"FILE", "SHARDS"})
	for _, f := range stats.Files {
		tbl.AppendRow(table.Row{f.File, f.Count})
	}
	fmt.Fprintln(w, tbl.Render())
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}

// splitLinesKeepNL splits into lines keeping the newline characters, which
// produces cleaner unified hunks. The last chunk may lack a newline when
// the text does not end with one.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.SplitAfter(s, "\n")
}
