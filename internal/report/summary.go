// Package report renders the human-readable SUMMARY.md for an execution
// run and patches it when late workflow reports arrive. The summary is a
// set of markdown status tables; patches replace whole table rows keyed by
// their first cell, so late updates never depend on prose wording.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
	"github.com/Aceek/daily-ai-webhook/pkg/models"
)

// Status markers used in summary tables.
const (
	markOK      = "[+]"
	markFail    = "[x]"
	markPending = "[?]"
)

// RenderSummary renders SUMMARY.md for one execution run. Any of digest
// and workflow may be nil: absent inputs render as unknown or zero rather
// than being omitted, so the table shape is stable for later patching.
func RenderSummary(run *models.ExecutionRun, d *digest.Digest, wf *models.WorkflowReport, m *mission.Mission) string {
	var b strings.Builder

	date := run.Timestamp.Format("2006-01-02")
	fmt.Fprintf(&b, "# Digest Run - %s\n\n", date)
	fmt.Fprintf(&b, "**Mission:** %s\n", run.Mission)
	fmt.Fprintf(&b, "**Execution:** %s\n", run.ID)
	fmt.Fprintf(&b, "**Status:** %s %s\n", statusMarker(string(run.Status)), run.Status)
	fmt.Fprintf(&b, "**Duration:** %s\n", formatDuration(run.Metrics.Duration))
	fmt.Fprintf(&b, "**Cost:** %s\n", formatCost(run.Metrics.CostUSD))
	fmt.Fprintf(&b, "**Tokens:** %d in / %d out\n\n", run.Metrics.InputTokens, run.Metrics.OutputTokens)

	writePipeline(&b, run, d, wf)
	writeOutput(&b, d, m)
	writeTopStories(&b, d, m)
	writeStorage(&b, d, wf)
	writeFiles(&b)

	if run.Error != "" {
		fmt.Fprintf(&b, "## Error\n\n```\n%s\n```\n", run.Error)
	}

	return b.String()
}

func writePipeline(b *strings.Builder, run *models.ExecutionRun, d *digest.Digest, wf *models.WorkflowReport) {
	b.WriteString("## Pipeline\n\n")
	b.WriteString("| Step | Status | Detail |\n")
	b.WriteString("|------|--------|--------|\n")

	collect := tableRow("collect", markPending, "unknown")
	if run.Metrics.ArticlesReceived > 0 {
		collect = tableRow("collect", markOK, fmt.Sprintf("%d articles", run.Metrics.ArticlesReceived))
	}
	b.WriteString(collect)

	analyze := tableRow("analyze", markFail, "no digest produced")
	if run.Status == models.RunUnknown {
		analyze = tableRow("analyze", markPending, "unknown")
	}
	if d != nil {
		analyze = tableRow("analyze", markOK, fmt.Sprintf("%d selected, %d excluded", d.ItemCount, d.ExcludedCount))
	}
	b.WriteString(analyze)

	b.WriteString(deliverRow(wf))
	b.WriteString("\n")
}

// deliverRow renders the pipeline deliver row; it is shared with the
// patcher so both paths agree on the format.
func deliverRow(wf *models.WorkflowReport) string {
	if wf == nil {
		return tableRow("deliver", markPending, "unknown")
	}
	if !wf.Delivered {
		detail := "not delivered"
		if wf.ErrorMessage != "" {
			detail = wf.ErrorMessage
		}
		return tableRow("deliver", markFail, detail)
	}
	detail := "delivered"
	if wf.MessageID != "" {
		detail = fmt.Sprintf("delivered (message %s)", wf.MessageID)
	}
	return tableRow("deliver", markOK, detail)
}

func writeOutput(b *strings.Builder, d *digest.Digest, m *mission.Mission) {
	b.WriteString("## Output\n\n")
	b.WriteString("| Category | Items |\n")
	b.WriteString("|----------|-------|\n")
	for _, category := range m.Categories {
		count := 0
		if d != nil {
			count = len(d.Sections[category])
		}
		fmt.Fprintf(b, "| %s | %d |\n", category, count)
	}
	b.WriteString("\n")

	if d != nil && d.ExcludedCount > 0 {
		fmt.Fprintf(b, "Excluded %d:", d.ExcludedCount)
		for _, reason := range []digest.ExclusionReason{
			digest.ReasonOffTopic, digest.ReasonDuplicate,
			digest.ReasonLowPriority, digest.ReasonOutdated,
		} {
			if n := d.ExclusionBreakdown[reason]; n > 0 {
				fmt.Fprintf(b, " %s=%d", reason, n)
			}
		}
		b.WriteString("\n\n")
	}
}

func writeTopStories(b *strings.Builder, d *digest.Digest, m *mission.Mission) {
	if d == nil {
		return
	}
	items := d.Sections[m.Primary]
	if len(items) == 0 {
		return
	}
	if len(items) > 3 {
		items = items[:3]
	}

	b.WriteString("## Top Stories\n\n")
	for i, item := range items {
		fmt.Fprintf(b, "%d. [%s](%s)\n", i+1, item.Title, item.URL)
	}
	b.WriteString("\n")
}

func writeStorage(b *strings.Builder, d *digest.Digest, wf *models.WorkflowReport) {
	b.WriteString("## Storage\n\n")
	b.WriteString("| Target | Status | Detail |\n")
	b.WriteString("|--------|--------|--------|\n")
	b.WriteString(databaseRow(d, wf))
	b.WriteString(deliveryRow(wf))
	b.WriteString("\n")
}

func databaseRow(d *digest.Digest, wf *models.WorkflowReport) string {
	if wf != nil && wf.DBSaved {
		return tableRow("database", markOK, fmt.Sprintf("digest %d, %d articles", wf.DigestID, wf.ArticlesSaved))
	}
	if d != nil && d.DigestID != 0 {
		return tableRow("database", markOK, fmt.Sprintf("digest %d", d.DigestID))
	}
	if wf != nil {
		return tableRow("database", markFail, "not saved")
	}
	return tableRow("database", markPending, "unknown")
}

func deliveryRow(wf *models.WorkflowReport) string {
	if wf == nil {
		return tableRow("delivery", markPending, "unknown")
	}
	if !wf.Delivered {
		return tableRow("delivery", markFail, "not delivered")
	}
	detail := "delivered"
	if wf.ChannelID != "" {
		detail = fmt.Sprintf("delivered to %s", wf.ChannelID)
	}
	return tableRow("delivery", markOK, detail)
}

func writeFiles(b *strings.Builder) {
	b.WriteString("## Files\n\n")
	b.WriteString("- [digest.json](digest.json)\n")
	b.WriteString("- [articles.json](articles.json)\n")
	b.WriteString("- [research.md](research.md)\n")
	b.WriteString("- [timeline](raw/timeline.json)\n\n")
}

// PatchSummary rewrites the deliver, database, and delivery table rows of
// an existing summary with the outcome from a late workflow report. Rows
// are located by their first cell; nothing else in the document changes.
func PatchSummary(content string, wf *models.WorkflowReport, d *digest.Digest) string {
	content = replaceRow(content, "deliver", deliverRow(wf))
	content = replaceRow(content, "database", databaseRow(d, wf))
	content = replaceRow(content, "delivery", deliveryRow(wf))
	return content
}

// replaceRow swaps the first table row whose key column equals key. The
// content is returned unchanged when no such row exists.
func replaceRow(content, key, row string) string {
	prefix := "| " + key + " |"
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, prefix) {
			lines[i] = strings.TrimSuffix(row, "\n")
			return strings.Join(lines, "\n")
		}
	}
	return content
}

func tableRow(key, marker, detail string) string {
	return fmt.Sprintf("| %s | %s | %s |\n", key, marker, detail)
}

func statusMarker(status string) string {
	switch status {
	case "success":
		return markOK
	case "failed", "error":
		return markFail
	default:
		return markPending
	}
}

// formatDuration renders a duration as whole seconds below a minute and
// minutes plus seconds above.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "unknown"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

// formatCost renders a dollar amount with four decimal places, the
// precision the agent reports.
func formatCost(usd float64) string {
	if usd == 0 {
		return "unknown"
	}
	return fmt.Sprintf("$%.4f", usd)
}
