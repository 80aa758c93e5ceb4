// Package orchestrator ties the run directory, agent invocation, and
// summary rendering together into one end-to-end digest run.
package orchestrator

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aceek/daily-ai-webhook/internal/agent"
	"github.com/Aceek/daily-ai-webhook/internal/config"
	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
	"github.com/Aceek/daily-ai-webhook/internal/report"
	"github.com/Aceek/daily-ai-webhook/internal/runlog"
	"github.com/Aceek/daily-ai-webhook/pkg/models"
)

// AgentInvoker runs the agent CLI for one prompt.
type AgentInvoker interface {
	Invoke(ctx context.Context, prompt, execDir string) *agent.Result
}

// RunRequest describes one digest run.
type RunRequest struct {
	// Mission is the mission id; empty uses the configured default.
	Mission string
	// Articles are the collected input articles.
	Articles []models.Article
	// WorkflowExecutionID is the upstream workflow correlation token.
	WorkflowExecutionID string
}

// RunOutcome is the result of one digest run.
type RunOutcome struct {
	// Run is the recorded execution.
	Run *models.ExecutionRun
	// Dir is the run's log directory.
	Dir *runlog.ExecutionDir
	// Digest is the archived digest the agent submitted, nil when none
	// was produced.
	Digest *digest.Digest
}

// Service orchestrates digest runs.
type Service struct {
	cfg      *config.Config
	registry *mission.Registry
	invoker  AgentInvoker
}

// NewService creates a run orchestrator.
func NewService(cfg *config.Config, registry *mission.Registry, invoker AgentInvoker) *Service {
	return &Service{
		cfg:      cfg,
		registry: registry,
		invoker:  invoker,
	}
}

// NewRunID returns a fresh 12-character run identifier.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Run executes one digest run end to end: allocate the run directory,
// stage the articles, invoke the agent, collect its digest, and write the
// summary. Run itself only fails on filesystem errors while setting up the
// run directory; agent failures are recorded in the returned run.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunOutcome, error) {
	missionID := req.Mission
	if missionID == "" {
		missionID = s.cfg.Missions.Default
	}
	m, err := s.registry.Get(missionID)
	if err != nil {
		return nil, err
	}

	runID := NewRunID()
	ts := time.Now()
	dir, err := runlog.Allocate(s.cfg.Logs.Dir, runID, ts)
	if err != nil {
		return nil, err
	}
	log.Printf("[run] %s started for mission %s in %s", runID, missionID, dir.Path())

	if err := agent.WriteArticlesFile(req.Articles, dir.ArticlesPath()); err != nil {
		return nil, err
	}

	prompt := agent.BuildPrompt(missionID, dir.ArticlesPath(), runID,
		dir.ResearchPath(), req.WorkflowExecutionID, ts)

	watcher := newDigestWatcher(dir.Path())
	defer watcher.Close()

	result := s.invoker.Invoke(ctx, prompt, dir.Path())

	if arrived, at := watcher.Arrived(); arrived {
		log.Printf("[run] %s digest arrived after %s", runID, at.Sub(ts).Round(time.Second))
	}

	run := &models.ExecutionRun{
		ID:                  runID,
		Timestamp:           ts,
		Mission:             missionID,
		Status:              models.RunSuccess,
		WorkflowExecutionID: req.WorkflowExecutionID,
		Metrics: models.Metrics{
			ArticlesReceived: len(req.Articles),
			Duration:         result.Duration,
			InputTokens:      result.InputTokens,
			OutputTokens:     result.OutputTokens,
			CostUSD:          result.CostUSD,
		},
	}
	if !result.Success {
		run.Status = models.RunFailed
		run.Error = result.Error
	}

	var d *digest.Digest
	stored := &digest.Digest{}
	if err := dir.ReadJSON(dir.DigestPath(), stored); err == nil {
		d = stored
	} else if run.Succeeded() {
		run.Status = models.RunFailed
		run.Error = "agent completed without submitting a digest"
	}

	if err := dir.SaveJSON(result, dir.TimelinePath()); err != nil {
		log.Printf("[run] %s save timeline: %v", runID, err)
	}

	summary := report.RenderSummary(run, d, nil, m)
	if err := dir.SaveText(summary, dir.SummaryPath()); err != nil {
		log.Printf("[run] %s save summary: %v", runID, err)
	}

	log.Printf("[run] %s finished: %s", runID, run.Status)
	return &RunOutcome{Run: run, Dir: dir, Digest: d}, nil
}
