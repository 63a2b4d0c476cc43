// Package report renders investigation records and batch summaries for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/fraudinv/internal/investigation"
	"github.com/Cyclone1070/fraudinv/internal/workflow/runner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MarkdownRenderer renders markdown for a terminal of the given width.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders with one of glamour's standard styles ("dark", "light", "notty").
type GlamourRenderer struct {
	Style string
}

func (g GlamourRenderer) Render(content string, width int) (string, error) {
	style := g.Style
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	recommendationColors = map[investigation.Recommendation]lipgloss.Color{
		investigation.Escalate: lipgloss.Color("9"),
		investigation.Verify:   lipgloss.Color("11"),
		investigation.Monitor:  lipgloss.Color("12"),
		investigation.Dismiss:  lipgloss.Color("10"),
	}
)

// RecordMarkdown lays a record out as a markdown document.
func RecordMarkdown(rec *investigation.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Investigation %s\n\n", rec.CaseID)
	fmt.Fprintf(&b, "- **Status:** %s\n", rec.Status)
	if rec.Recommendation != "" {
		fmt.Fprintf(&b, "- **Recommendation:** %s\n", rec.Recommendation)
		fmt.Fprintf(&b, "- **Confidence:** %.2f", rec.ConfidenceScore)
		if rec.ThresholdRecommendation != "" && rec.ThresholdRecommendation != rec.Recommendation {
			fmt.Fprintf(&b, " (threshold band: %s)", rec.ThresholdRecommendation)
		}
		b.WriteString("\n")
	}
	if rec.Ambiguous {
		b.WriteString("- **Parser:** defaults used, review the brief manually\n")
	}
	fmt.Fprintf(&b, "- **Turns:** %d, **tool calls:** %d\n", rec.Turns, rec.TotalToolCalls)

	if len(rec.ToolsUsed) > 0 {
		b.WriteString("\n## Tools used\n\n")
		for _, name := range sortedKeys(rec.ToolsUsed) {
			fmt.Fprintf(&b, "- `%s` x%d\n", name, rec.ToolsUsed[name])
		}
	}
	if rec.Error != "" {
		fmt.Fprintf(&b, "\n## Error\n\n%s\n", rec.Error)
	}
	if strings.TrimSpace(rec.Brief) != "" {
		b.WriteString("\n## Brief\n\n")
		b.WriteString(rec.Brief)
		b.WriteString("\n")
	}
	return b.String()
}

// Record renders a record, falling back to plain markdown when rendering fails.
func Record(rec *investigation.Record, renderer MarkdownRenderer, width int) string {
	md := RecordMarkdown(rec)
	if renderer == nil {
		return md
	}
	out, err := renderer.Render(md, width)
	if err != nil {
		return md
	}
	return out
}

// Headline is a one-line styled status for progress output.
func Headline(rec *investigation.Record) string {
	id := titleStyle.Render(rec.CaseID)
	switch rec.Status {
	case investigation.StatusComplete:
		style := lipgloss.NewStyle().Bold(true).Foreground(recommendationColors[rec.Recommendation])
		return fmt.Sprintf("%s  %s  %s", id, style.Render(string(rec.Recommendation)), dimStyle.Render(fmt.Sprintf("confidence %.2f, %d tool calls", rec.ConfidenceScore, rec.TotalToolCalls)))
	case investigation.StatusError:
		return fmt.Sprintf("%s  %s  %s", id, errorStyle.Render("error"), dimStyle.Render(rec.Error))
	default:
		return fmt.Sprintf("%s  %s  %s", id, string(rec.Status), dimStyle.Render(rec.Error))
	}
}

// Summary renders batch statistics as a bordered table.
func Summary(res *runner.BatchResult) string {
	s := res.Summary
	rows := [][]string{
		{"Run", res.RunID},
		{"Total investigations", fmt.Sprint(s.Total)},
	}
	for _, name := range sortedKeys(s.ByRecommendation) {
		rows = append(rows, []string{"  " + name, fmt.Sprint(s.ByRecommendation[name])})
	}
	statuses := make(map[string]int, len(s.ByStatus))
	for k, v := range s.ByStatus {
		statuses[string(k)] = v
	}
	for _, name := range sortedKeys(statuses) {
		rows = append(rows, []string{"  status " + name, fmt.Sprint(statuses[name])})
	}
	rows = append(rows,
		[]string{"Ambiguous briefs", fmt.Sprint(s.Ambiguous)},
		[]string{"Average confidence", fmt.Sprintf("%.2f", s.MeanConfidence)},
		[]string{"Average tool calls", fmt.Sprintf("%.1f", s.MeanToolCalls)},
	)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("INVESTIGATION SUMMARY", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.Render()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
