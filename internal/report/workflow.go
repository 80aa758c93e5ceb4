package report

import (
	"fmt"
	"strings"

	"github.com/Aceek/daily-ai-webhook/pkg/models"
)

// RenderWorkflow renders workflow.md for a workflow report, whether it is
// correlated to a run directory or stored standalone.
func RenderWorkflow(wf *models.WorkflowReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Workflow Report - %s\n\n", wf.WorkflowName)
	fmt.Fprintf(&b, "**Execution:** %s\n", wf.WorkflowExecutionID)
	fmt.Fprintf(&b, "**Status:** %s %s\n", statusMarker(wf.Status), wf.Status)
	fmt.Fprintf(&b, "**Started:** %s\n", wf.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Duration:** %s\n", formatDuration(wf.Duration))
	fmt.Fprintf(&b, "**Articles collected:** %d\n\n", wf.ArticlesCount)

	if len(wf.Nodes) > 0 {
		b.WriteString("## Steps\n\n")
		b.WriteString("| Step | Status | Detail |\n")
		b.WriteString("|------|--------|--------|\n")
		for _, n := range wf.Nodes {
			detail := "-"
			if n.Error != "" {
				detail = n.Error
			}
			b.WriteString(tableRow(n.Name, statusMarker(n.Status), detail))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Outcome\n\n")
	b.WriteString("| Target | Status | Detail |\n")
	b.WriteString("|--------|--------|--------|\n")
	b.WriteString(databaseRow(nil, wf))
	b.WriteString(deliveryRow(wf))
	b.WriteString("\n")

	if wf.ErrorMessage != "" {
		b.WriteString("## Error\n\n")
		if wf.ErrorNode != "" {
			fmt.Fprintf(&b, "Failed at step `%s`:\n\n", wf.ErrorNode)
		}
		fmt.Fprintf(&b, "```\n%s\n```\n", wf.ErrorMessage)
	}

	return b.String()
}
