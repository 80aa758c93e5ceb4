// Package agent invokes the Claude Code CLI as a subprocess and reduces
// its stream-json output into a single result with timeline, token, and
// cost accounting.
package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StreamEvent is one entry of the execution timeline, a condensed view of
// a stream-json line.
type StreamEvent struct {
	// Offset is seconds elapsed since the invocation started.
	Offset float64 `json:"timestamp"`
	// Type is the event type as emitted by the CLI.
	Type string `json:"event_type"`
	// Content is a short human-readable summary of the event.
	Content string `json:"content"`
	// Raw is the original JSON line.
	Raw json.RawMessage `json:"raw_data,omitempty"`
}

// eventSummaryLimit bounds text carried into timeline summaries.
const eventSummaryLimit = 200

// Reduce parses the CLI's line-delimited stream-json output into a Result.
// Malformed lines are skipped. Token and cost accounting comes from the
// terminal result event; cache creation and cache read tokens count as
// input tokens. When no result event carries a response, the last
// assistant text block stands in.
func Reduce(output string, start time.Time) *Result {
	res := &Result{Success: true}
	offset := time.Since(start).Seconds()

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var data map[string]any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			continue
		}

		eventType, _ := data["type"].(string)
		if eventType == "" {
			eventType = "unknown"
		}

		res.Timeline = append(res.Timeline, StreamEvent{
			Offset:  offset,
			Type:    eventType,
			Content: summarize(eventType, data),
			Raw:     json.RawMessage(line),
		})

		switch eventType {
		case "result":
			if s, ok := data["result"].(string); ok {
				res.Response = s
			}
			if c, ok := data["total_cost_usd"].(float64); ok {
				res.CostUSD = c
			}
			if usage, ok := data["usage"].(map[string]any); ok {
				res.InputTokens = intField(usage, "input_tokens")
				res.OutputTokens = intField(usage, "output_tokens")
				res.InputTokens += intField(usage, "cache_creation_input_tokens")
				res.InputTokens += intField(usage, "cache_read_input_tokens")
			}
		case "assistant":
			if res.Response == "" {
				if text := assistantText(data); text != "" {
					res.Response = text
				}
			}
		}
	}

	return res
}

// summarize builds the short timeline description for one event.
func summarize(eventType string, data map[string]any) string {
	switch eventType {
	case "init":
		session, _ := data["session_id"].(string)
		return "Session started: " + truncate(session, 12)

	case "assistant":
		var parts []string
		for _, block := range contentBlocks(data) {
			switch block["type"] {
			case "text":
				text, _ := block["text"].(string)
				parts = append(parts, truncate(text, eventSummaryLimit))
			case "tool_use":
				name, _ := block["name"].(string)
				if name == "" {
					name = "unknown"
				}
				parts = append(parts, fmt.Sprintf("[Using tool: %s]", name))
			}
		}
		return strings.Join(parts, " ")

	case "tool_use":
		name, _ := data["name"].(string)
		if name == "" {
			name = "unknown"
		}
		return "Calling " + name

	case "tool_result":
		out, _ := data["output"].(string)
		if out == "" {
			return "(empty result)"
		}
		return truncate(out, eventSummaryLimit)

	case "result":
		cost, _ := data["total_cost_usd"].(float64)
		durationMS, _ := data["duration_ms"].(float64)
		return fmt.Sprintf("Completed (cost: $%.4f, duration: %.1fs)", cost, durationMS/1000)

	case "error":
		if e, ok := data["error"].(map[string]any); ok {
			if msg, ok := e["message"].(string); ok {
				return "Error: " + msg
			}
		}
		return "Error: Unknown error"

	case "system":
		if msg, ok := data["message"].(string); ok {
			return msg
		}
		return "System message"
	}

	return ""
}

// contentBlocks returns the message content blocks of an assistant event.
func contentBlocks(data map[string]any) []map[string]any {
	message, ok := data["message"].(map[string]any)
	if !ok {
		return nil
	}
	content, ok := message["content"].([]any)
	if !ok {
		return nil
	}
	blocks := make([]map[string]any, 0, len(content))
	for _, c := range content {
		if block, ok := c.(map[string]any); ok {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// assistantText returns the last text block of an assistant event.
func assistantText(data map[string]any) string {
	text := ""
	for _, block := range contentBlocks(data) {
		if block["type"] == "text" {
			if s, ok := block["text"].(string); ok && s != "" {
				text = s
			}
		}
	}
	return text
}

func intField(m map[string]any, key string) int64 {
	if f, ok := m[key].(float64); ok {
		return int64(f)
	}
	return 0
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
