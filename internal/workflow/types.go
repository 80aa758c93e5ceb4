// Package workflow receives asynchronous workflow reports from an external
// automation engine and files them against the execution run they belong
// to. Correlation is best effort: a report that matches no run is stored
// standalone rather than rejected.
package workflow

import (
	"time"

	"github.com/Aceek/daily-ai-webhook/pkg/models"
)

// ReportRequest is the wire form of a workflow report as posted by the
// engine. Timestamps arrive as RFC 3339 strings.
type ReportRequest struct {
	WorkflowExecutionID string              `json:"workflow_execution_id"`
	WorkflowName        string              `json:"workflow_name"`
	StartedAt           string              `json:"started_at"`
	FinishedAt          string              `json:"finished_at"`
	Status              string              `json:"status"`
	ErrorMessage        string              `json:"error_message"`
	ErrorNode           string              `json:"error_node"`
	Nodes               []models.NodeResult `json:"nodes_executed"`
	ArticlesCount       int                 `json:"articles_count"`
	ClaudeExecutionID   string              `json:"claude_execution_id"`
	Delivered           bool                `json:"delivered"`
	MessageID           string              `json:"message_id"`
	ChannelID           string              `json:"channel_id"`
	DigestID            int64               `json:"digest_id"`
	DBSaved             bool                `json:"db_saved"`
	ArticlesSaved       int                 `json:"articles_saved"`
}

// ToReport converts the wire form to the internal report, parsing
// timestamps and deriving the duration. Unparseable timestamps are left
// zero; the report is still usable.
func (r *ReportRequest) ToReport() *models.WorkflowReport {
	rep := &models.WorkflowReport{
		WorkflowExecutionID: r.WorkflowExecutionID,
		WorkflowName:        r.WorkflowName,
		Status:              r.Status,
		ErrorMessage:        r.ErrorMessage,
		ErrorNode:           r.ErrorNode,
		Nodes:               r.Nodes,
		ArticlesCount:       r.ArticlesCount,
		ClaudeExecutionID:   r.ClaudeExecutionID,
		Delivered:           r.Delivered,
		MessageID:           r.MessageID,
		ChannelID:           r.ChannelID,
		DigestID:            r.DigestID,
		DBSaved:             r.DBSaved,
		ArticlesSaved:       r.ArticlesSaved,
	}

	if t, err := time.Parse(time.RFC3339, r.StartedAt); err == nil {
		rep.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, r.FinishedAt); err == nil {
		rep.FinishedAt = t
	}
	if !rep.StartedAt.IsZero() && !rep.FinishedAt.IsZero() {
		rep.Duration = rep.FinishedAt.Sub(rep.StartedAt)
	}

	return rep
}
