package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aceek/daily-ai-webhook/internal/archive"
	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func testSubmitService(t *testing.T) *SubmitService {
	t.Helper()
	db, err := archive.Open(filepath.Join(t.TempDir(), "digests.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSubmitService(archive.NewStore(db), mission.NewRegistry(t.TempDir()), "ai-news")
}

func validSubmission() *digest.Submission {
	return &digest.Submission{
		Date: "2025-03-14",
		Sections: map[string][]digest.Item{
			"headlines": {
				{Title: "Story", URL: "https://a.example/1", Summary: "s", Source: "Example", Confidence: 0.9},
			},
		},
		Metadata: digest.Metadata{
			ArticlesAnalyzed: intPtr(10),
			WebSearches:      intPtr(2),
			ResearchDoc:      boolPtr(true),
		},
	}
}

func TestSubmit_AcceptsAndArchives(t *testing.T) {
	svc := testSubmitService(t)
	execDir := t.TempDir()

	res, err := svc.Submit(context.Background(), validSubmission(), "run1", execDir)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if !res.Accepted || !res.Saved {
		t.Fatalf("result = %+v, want accepted and saved", res)
	}
	if res.DigestID == 0 {
		t.Error("expected a digest id")
	}
	if res.ItemsSaved != 1 {
		t.Errorf("ItemsSaved = %d, want 1", res.ItemsSaved)
	}

	data, err := os.ReadFile(filepath.Join(execDir, "digest.json"))
	if err != nil {
		t.Fatalf("digest.json not written: %v", err)
	}
	var d digest.Digest
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("unmarshal digest.json: %v", err)
	}
	if d.DigestID != res.DigestID {
		t.Errorf("digest.json id = %d, want %d", d.DigestID, res.DigestID)
	}
	if d.Mission != "ai-news" || d.Date != "2025-03-14" {
		t.Errorf("digest identity = %s/%s", d.Mission, d.Date)
	}
}

func TestSubmit_ValidationFailurePersistsNothing(t *testing.T) {
	svc := testSubmitService(t)
	execDir := t.TempDir()

	sub := validSubmission()
	sub.Sections["headlines"][0].Title = ""

	res, err := svc.Submit(context.Background(), sub, "run1", execDir)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if res.Accepted {
		t.Fatal("expected rejection")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "missing 'title'") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want missing title", res.Errors)
	}
	if _, err := os.Stat(filepath.Join(execDir, "digest.json")); !os.IsNotExist(err) {
		t.Error("digest.json should not be written on rejection")
	}
}

func TestSubmit_DBFailureStillWritesFile(t *testing.T) {
	db, err := archive.Open(filepath.Join(t.TempDir(), "bare.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// No Migrate: the archive write will fail.
	svc := NewSubmitService(archive.NewStore(db), mission.NewRegistry(t.TempDir()), "ai-news")
	execDir := t.TempDir()

	res, err := svc.Submit(context.Background(), validSubmission(), "run1", execDir)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if !res.Accepted || res.Saved {
		t.Fatalf("result = %+v, want accepted but not saved", res)
	}
	if res.SaveError == "" {
		t.Error("expected a save error description")
	}

	data, err := os.ReadFile(filepath.Join(execDir, "digest.json"))
	if err != nil {
		t.Fatalf("digest.json should be written despite DB failure: %v", err)
	}
	var d digest.Digest
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatal(err)
	}
	if d.DigestID != 0 {
		t.Errorf("digest id = %d, want 0 without a committed row", d.DigestID)
	}
}

func TestSubmit_DefaultsMissionAndDate(t *testing.T) {
	svc := testSubmitService(t)

	sub := validSubmission()
	sub.Mission = ""
	sub.Date = ""

	res, err := svc.Submit(context.Background(), sub, "run1", "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !res.Accepted || !res.Saved {
		t.Fatalf("result = %+v", res)
	}
	if res.DigestPath != "" {
		t.Error("no digest path expected without a run directory")
	}
}
