package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config holds the CLI invocation settings.
type Config struct {
	// Binary is the agent CLI executable name or path.
	Binary string
	// Model is passed via --model.
	Model string
	// AllowedTools is the comma-separated tool allow-list.
	AllowedTools string
	// Timeout is the wall-clock limit per attempt.
	Timeout time.Duration
	// Retries is the number of additional attempts after a failure.
	Retries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// Result is the reduced outcome of one agent invocation.
type Result struct {
	// Success reports whether the CLI completed and its output parsed.
	Success bool `json:"success"`
	// Error describes the failure when Success is false.
	Error string `json:"error,omitempty"`
	// Response is the agent's final text response.
	Response string `json:"response,omitempty"`
	// Timeline is the condensed event log of the invocation.
	Timeline []StreamEvent `json:"timeline,omitempty"`
	// InputTokens includes cache creation and cache read tokens.
	InputTokens int64 `json:"input_tokens"`
	// OutputTokens is the output token count.
	OutputTokens int64 `json:"output_tokens"`
	// CostUSD is the total cost reported by the CLI.
	CostUSD float64 `json:"cost_usd"`
	// Duration is the wall-clock time of the successful attempt.
	Duration time.Duration `json:"duration"`
}

// Invoker runs the agent CLI.
type Invoker struct {
	cfg Config
}

// NewInvoker creates an invoker with the given settings.
func NewInvoker(cfg Config) *Invoker {
	if cfg.Binary == "" {
		cfg.Binary = "claude"
	}
	return &Invoker{cfg: cfg}
}

// Invoke runs the CLI with the prompt, retrying failed attempts with a
// fixed delay. The execution directory is exported as EXECUTION_DIR so the
// agent's own tools write into the run's folder. Invoke never returns an
// error: failures are reported in the result.
func (v *Invoker) Invoke(ctx context.Context, prompt, execDir string) *Result {
	var lastErr string

	for attempt := 0; attempt <= v.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(v.cfg.RetryDelay):
			case <-ctx.Done():
				return &Result{Error: ctx.Err().Error()}
			}
		}

		log.Printf("[agent] calling %s (attempt %d)", v.cfg.Binary, attempt+1)
		res, err := v.attempt(ctx, prompt, execDir)
		if err == nil {
			return res
		}
		lastErr = err.Error()
		log.Printf("[agent] attempt %d failed: %v", attempt+1, err)

		if ctx.Err() != nil {
			break
		}
	}

	return &Result{Error: lastErr}
}

// attempt runs the CLI once under the per-attempt timeout. On timeout the
// whole process group is killed so agent-spawned children do not outlive
// the run.
func (v *Invoker) attempt(ctx context.Context, prompt, execDir string) (*Result, error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if v.cfg.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
	}
	defer cancel()

	cmd := exec.Command(v.cfg.Binary,
		"-p", prompt,
		"--model", v.cfg.Model,
		"--allowedTools", v.cfg.AllowedTools,
		"--output-format", "stream-json",
		"--verbose",
	)
	cmd.Env = append(os.Environ(), "EXECUTION_DIR="+execDir)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", v.cfg.Binary, err)
	}

	waitDone := make(chan struct{})
	go func() {
		select {
		case <-attemptCtx.Done():
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		case <-waitDone:
		}
	}()

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&stderr, stderrPipe)
		return err
	})
	pumpErr := g.Wait()

	waitErr := cmd.Wait()
	close(waitDone)

	if attemptCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("timeout after %s", v.cfg.Timeout)
	}
	if attemptCtx.Err() != nil {
		return nil, attemptCtx.Err()
	}
	if pumpErr != nil {
		return nil, fmt.Errorf("read output: %w", pumpErr)
	}

	if waitErr != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		detail := bytes.TrimSpace(stderr.Bytes())
		if len(detail) == 0 {
			detail = tail(bytes.TrimSpace(stdout.Bytes()), 2000)
		}
		return nil, fmt.Errorf("%s failed (code %d): %s", v.cfg.Binary, code, detail)
	}

	res := Reduce(stdout.String(), start)
	res.Duration = time.Since(start)
	return res, nil
}

// tail returns the last n bytes of b.
func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}
