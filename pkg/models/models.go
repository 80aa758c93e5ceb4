// Package models contains the shared data types for digest runs.
package models

import "time"

// RunStatus represents the terminal status of an execution run.
type RunStatus string

const (
	// RunSuccess indicates the agent completed and exited cleanly.
	RunSuccess RunStatus = "success"
	// RunFailed indicates the agent failed, timed out, or crashed.
	RunFailed RunStatus = "failed"
	// RunUnknown indicates the outcome could not be determined.
	RunUnknown RunStatus = "unknown"
)

// Article represents one collected news article handed to the agent.
type Article struct {
	// Title is the article headline.
	Title string `json:"title"`
	// URL is the canonical link to the article.
	URL string `json:"url"`
	// Description is the article body or excerpt.
	Description string `json:"description,omitempty"`
	// PubDate is the publication date as reported by the source feed.
	PubDate string `json:"pub_date,omitempty"`
	// Source names the feed or site the article came from.
	Source string `json:"source,omitempty"`
}

// Metrics holds the accounting captured for one execution run.
type Metrics struct {
	// ArticlesReceived is the number of input articles handed to the agent.
	ArticlesReceived int `json:"articles_received"`
	// Duration is the wall-clock time of the agent invocation.
	Duration time.Duration `json:"duration"`
	// InputTokens is the total input token count, including cache tokens.
	InputTokens int64 `json:"input_tokens"`
	// OutputTokens is the total output token count.
	OutputTokens int64 `json:"output_tokens"`
	// CostUSD is the total cost estimate reported by the agent.
	CostUSD float64 `json:"cost_usd"`
}

// ExecutionRun is the record of one end-to-end agent invocation.
type ExecutionRun struct {
	// ID is the opaque run identifier, unique per invocation.
	ID string `json:"execution_id"`
	// Timestamp is when the run directory was allocated.
	Timestamp time.Time `json:"timestamp"`
	// Mission names the logical subject the run analyzed.
	Mission string `json:"mission"`
	// Status is the terminal status of the run.
	Status RunStatus `json:"status"`
	// Error holds the failure description when Status is RunFailed.
	Error string `json:"error,omitempty"`
	// WorkflowExecutionID is the upstream workflow correlation token, if any.
	WorkflowExecutionID string `json:"workflow_execution_id,omitempty"`
	// Metrics holds duration, token, and cost accounting.
	Metrics Metrics `json:"metrics"`
}

// Succeeded reports whether the run completed successfully.
func (r *ExecutionRun) Succeeded() bool {
	return r.Status == RunSuccess
}

// NodeResult is the outcome of a single named workflow step.
type NodeResult struct {
	// Name is the workflow step name.
	Name string `json:"name"`
	// Status is "success", "error", or "skipped".
	Status string `json:"status"`
	// Error holds the step failure message, if any.
	Error string `json:"error,omitempty"`
}

// WorkflowReport is the asynchronous secondary report an external workflow
// engine delivers about a run's downstream outcome. It arrives long after
// the run itself completed and is correlated by ClaudeExecutionID.
type WorkflowReport struct {
	// WorkflowExecutionID is the engine's own execution identifier.
	WorkflowExecutionID string `json:"workflow_execution_id"`
	// WorkflowName is the human-readable workflow name.
	WorkflowName string `json:"workflow_name"`
	// StartedAt is when the workflow started.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the workflow finished.
	FinishedAt time.Time `json:"finished_at"`
	// Duration is FinishedAt minus StartedAt.
	Duration time.Duration `json:"duration"`
	// Status is "success" or "error".
	Status string `json:"status"`
	// ErrorMessage describes the workflow failure, if any.
	ErrorMessage string `json:"error_message,omitempty"`
	// ErrorNode names the step that failed, if any.
	ErrorNode string `json:"error_node,omitempty"`
	// Nodes lists the executed steps in order.
	Nodes []NodeResult `json:"nodes_executed,omitempty"`
	// ArticlesCount is the number of articles the workflow collected.
	ArticlesCount int `json:"articles_count"`
	// ClaudeExecutionID is the run identifier known to this service, used
	// for correlation. Empty when the workflow ran standalone.
	ClaudeExecutionID string `json:"claude_execution_id,omitempty"`
	// Delivered reports whether the digest was published downstream.
	Delivered bool `json:"delivered"`
	// MessageID identifies the published message, when delivered.
	MessageID string `json:"message_id,omitempty"`
	// ChannelID identifies the delivery channel, when delivered.
	ChannelID string `json:"channel_id,omitempty"`
	// DigestID is the database id of the stored digest, if saved.
	DigestID int64 `json:"digest_id,omitempty"`
	// DBSaved reports whether the digest reached the database.
	DBSaved bool `json:"db_saved"`
	// ArticlesSaved is the number of article rows stored.
	ArticlesSaved int `json:"articles_saved"`
}
