package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"autodiag/internal/diagnose"
	"autodiag/internal/history"
)

// writeJSON emits v as indented JSON, for the --json flags and config show.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRoundedTable(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	return tw
}

// renderResult lays a diagnosis out as field/value pairs. Optional fields
// (keywords, best match) only get a row when present.
func renderResult(result *diagnose.Result) string {
	tw := newRoundedTable(table.Row{"Field", "Value"})
	tw.AppendRow(table.Row{"Predicted issue", result.PredictedIssue})
	tw.AppendRow(table.Row{"Confidence", fmt.Sprintf("%.0f%%", result.Confidence*100)})
	tw.AppendRow(table.Row{"AI powered", strconv.FormatBool(result.AIPowered)})
	tw.AppendRow(table.Row{"Data sources", strings.Join(result.DataSources, ", ")})
	if len(result.Keywords) > 0 {
		tw.AppendRow(table.Row{"Keywords", strings.Join(result.Keywords, ", ")})
	}
	if result.BestAudioMatch != nil {
		tw.AppendRow(table.Row{
			"Best audio match",
			fmt.Sprintf("%s (%.1f%% similarity)", result.BestAudioMatch.ItemID, result.BestAudioMatch.Similarity*100),
		})
	}
	return tw.Render()
}

// renderHistory lists past diagnoses newest-first, one row per record.
func renderHistory(records []history.Record) string {
	tw := newRoundedTable(table.Row{"ID", "When", "Vehicle", "Predicted Issue", "Confidence", "AI", "Keywords", "Best Match"})
	for _, rec := range records {
		match := ""
		if rec.BestAudioMatch != nil {
			match = fmt.Sprintf("%s (%.0f%%)", rec.BestAudioMatch.ItemID, rec.BestAudioMatch.Similarity*100)
		}
		tw.AppendRow(table.Row{
			strconv.FormatInt(rec.ID, 10),
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.Vehicle,
			rec.PredictedIssue,
			fmt.Sprintf("%.0f%%", rec.Confidence*100),
			strconv.FormatBool(rec.AIPowered),
			strings.Join(rec.Keywords, ", "),
			match,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
