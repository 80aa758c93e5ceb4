package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Aceek/daily-ai-webhook/internal/archive"
	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
)

// SubmitResult is the structured response to a digest submission.
type SubmitResult struct {
	// Accepted reports whether the submission passed validation.
	Accepted bool `json:"accepted"`
	// Errors lists the validation problems when Accepted is false.
	Errors []string `json:"errors,omitempty"`
	// Saved reports whether the database transaction committed.
	Saved bool `json:"saved"`
	// SaveError describes the database failure when Saved is false.
	SaveError string `json:"save_error,omitempty"`
	// DigestID is the stored digest row id when Saved.
	DigestID int64 `json:"digest_id,omitempty"`
	// ItemsSaved is the number of new article rows written.
	ItemsSaved int `json:"items_saved"`
	// DigestPath is where digest.json was written, when a run directory
	// was given.
	DigestPath string `json:"digest_path,omitempty"`
}

// SubmitService validates and archives digest submissions.
type SubmitService struct {
	store          *archive.Store
	registry       *mission.Registry
	defaultMission string
}

// NewSubmitService creates a submission handler.
func NewSubmitService(store *archive.Store, registry *mission.Registry, defaultMission string) *SubmitService {
	return &SubmitService{
		store:          store,
		registry:       registry,
		defaultMission: defaultMission,
	}
}

// Submit validates a submission and, when it passes, archives it and
// writes digest.json into the run directory. Validation failures persist
// nothing. A database failure does not block the file write: the digest
// file is still written, just without a digest id.
func (s *SubmitService) Submit(ctx context.Context, sub *digest.Submission, runID, execDir string) (*SubmitResult, error) {
	missionID := sub.Mission
	if missionID == "" {
		missionID = s.defaultMission
	}
	m, err := s.registry.Get(missionID)
	if err != nil {
		return nil, err
	}

	if errs := digest.Validate(sub, m); len(errs) > 0 {
		log.Printf("[submit] rejected: %d validation errors", len(errs))
		return &SubmitResult{Errors: errs}, nil
	}

	date := sub.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	res := s.store.Archive(ctx, sub, m, runID, date)

	d := digest.BuildDigest(sub, missionID, date, time.Now().UTC().Format(time.RFC3339))
	if res.Saved {
		d.DigestID = res.DigestID
	}

	out := &SubmitResult{
		Accepted:   true,
		Saved:      res.Saved,
		SaveError:  res.Err,
		DigestID:   d.DigestID,
		ItemsSaved: res.ItemsSaved,
	}

	if execDir != "" {
		path := filepath.Join(execDir, "digest.json")
		if err := writeDigestFile(d, path); err != nil {
			return nil, err
		}
		out.DigestPath = path
	}

	log.Printf("[submit] %s %s: %d items, saved=%v", missionID, date, d.ItemCount, res.Saved)
	return out, nil
}

func writeDigestFile(d *digest.Digest, path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write digest file: %w", err)
	}
	return nil
}
