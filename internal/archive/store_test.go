package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "digests.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func testSubmission(urls ...string) *digest.Submission {
	items := make([]digest.Item, 0, len(urls))
	for i, u := range urls {
		items = append(items, digest.Item{
			Title:      "Story " + string(rune('A'+i)),
			URL:        u,
			Summary:    "summary",
			Confidence: 0.8,
		})
	}
	return &digest.Submission{
		Sections: map[string][]digest.Item{"headlines": items},
		Metadata: digest.Metadata{
			ArticlesAnalyzed: intPtr(len(urls)),
			WebSearches:      intPtr(0),
			ResearchDoc:      boolPtr(false),
		},
	}
}

func TestArchive_SavesSelectedAndExcluded(t *testing.T) {
	s := openTestStore(t)
	sub := testSubmission("https://a.example/1")
	sub.Excluded = []digest.ExcludedItem{
		{Title: "Dropped", URL: "https://a.example/2", Category: "research", Reason: digest.ReasonDuplicate, Score: 4},
	}

	res := s.Archive(context.Background(), sub, mission.Default("ai-news"), "run1", "2025-03-14")
	if !res.Saved {
		t.Fatalf("Archive failed: %s", res.Err)
	}
	if res.DigestID == 0 {
		t.Error("expected a digest id")
	}
	if res.ItemsSaved != 2 {
		t.Errorf("ItemsSaved = %d, want 2", res.ItemsSaved)
	}

	var selected, excluded int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE status = 'selected'`).Scan(&selected); err != nil {
		t.Fatal(err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE status = 'excluded'`).Scan(&excluded); err != nil {
		t.Fatal(err)
	}
	if selected != 1 || excluded != 1 {
		t.Errorf("rows = %d selected / %d excluded, want 1/1", selected, excluded)
	}
}

func TestArchive_ExcludedCarriesCategory(t *testing.T) {
	s := openTestStore(t)
	sub := testSubmission("https://a.example/1")
	sub.Excluded = []digest.ExcludedItem{
		{Title: "Dropped", URL: "https://a.example/2", Category: "research", Reason: digest.ReasonDuplicate, Score: 4},
	}

	res := s.Archive(context.Background(), sub, mission.Default("ai-news"), "run1", "2025-03-14")
	if !res.Saved {
		t.Fatalf("Archive failed: %s", res.Err)
	}

	var categoryName string
	err := s.db.QueryRow(`
		SELECT c.name FROM articles a
		JOIN categories c ON a.category_id = c.id
		WHERE a.status = 'excluded'
	`).Scan(&categoryName)
	if err != nil {
		t.Fatalf("excluded row has no resolved category: %v", err)
	}
	if categoryName != "research" {
		t.Errorf("category = %q, want research", categoryName)
	}
}

func TestArchive_SameDateUpserts(t *testing.T) {
	s := openTestStore(t)
	m := mission.Default("ai-news")

	first := s.Archive(context.Background(), testSubmission("https://a.example/1"), m, "run1", "2025-03-14")
	second := s.Archive(context.Background(), testSubmission("https://a.example/1", "https://a.example/2"), m, "run2", "2025-03-14")

	if !first.Saved || !second.Saved {
		t.Fatalf("archive failed: %s / %s", first.Err, second.Err)
	}
	if first.DigestID != second.DigestID {
		t.Errorf("digest ids differ: %d vs %d", first.DigestID, second.DigestID)
	}

	var digests int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM daily_digests`).Scan(&digests); err != nil {
		t.Fatal(err)
	}
	if digests != 1 {
		t.Errorf("daily_digests rows = %d, want 1", digests)
	}

	var execID string
	if err := s.db.QueryRow(`SELECT execution_id FROM daily_digests`).Scan(&execID); err != nil {
		t.Fatal(err)
	}
	if execID != "run2" {
		t.Errorf("execution_id = %q, want run2 after upsert", execID)
	}
}

func TestArchive_DuplicateURLSkipped(t *testing.T) {
	s := openTestStore(t)
	m := mission.Default("ai-news")

	s.Archive(context.Background(), testSubmission("https://a.example/1"), m, "run1", "2025-03-13")
	res := s.Archive(context.Background(), testSubmission("https://a.example/1", "https://a.example/2"), m, "run2", "2025-03-14")

	if !res.Saved {
		t.Fatalf("Archive failed: %s", res.Err)
	}
	if res.ItemsSaved != 1 {
		t.Errorf("ItemsSaved = %d, want 1 (duplicate url skipped)", res.ItemsSaved)
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Errorf("article rows = %d, want 2", rows)
	}
}

func TestArchive_CategoryIdempotent(t *testing.T) {
	s := openTestStore(t)
	m := mission.Default("ai-news")

	s.Archive(context.Background(), testSubmission("https://a.example/1"), m, "run1", "2025-03-13")
	s.Archive(context.Background(), testSubmission("https://a.example/2"), m, "run2", "2025-03-14")

	var categories int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE name = 'headlines'`).Scan(&categories); err != nil {
		t.Fatal(err)
	}
	if categories != 1 {
		t.Errorf("headlines category rows = %d, want 1", categories)
	}
}

func TestFilterKnownURLs(t *testing.T) {
	s := openTestStore(t)
	m := mission.Default("ai-news")
	s.Archive(context.Background(), testSubmission("https://a.example/1"), m, "run1", "2025-03-14")

	known, err := s.FilterKnownURLs(context.Background(), "ai-news", []string{
		"https://a.example/1",
		"https://a.example/new",
	}, 7)
	if err != nil {
		t.Fatalf("FilterKnownURLs failed: %v", err)
	}
	if len(known) != 1 || known[0] != "https://a.example/1" {
		t.Errorf("known = %v, want just the archived url", known)
	}
}

func TestFilterKnownURLs_OtherMission(t *testing.T) {
	s := openTestStore(t)
	s.Archive(context.Background(), testSubmission("https://a.example/1"), mission.Default("ai-news"), "run1", "2025-03-14")

	known, err := s.FilterKnownURLs(context.Background(), "video-games", []string{"https://a.example/1"}, 7)
	if err != nil {
		t.Fatalf("FilterKnownURLs failed: %v", err)
	}
	if len(known) != 0 {
		t.Errorf("known = %v, want empty for a different mission", known)
	}
}

func TestRecentHeadlines(t *testing.T) {
	s := openTestStore(t)
	m := mission.Default("ai-news")
	s.Archive(context.Background(), testSubmission("https://a.example/1", "https://a.example/2"), m, "run1", "2025-03-14")

	headlines, err := s.RecentHeadlines(context.Background(), "ai-news", 7)
	if err != nil {
		t.Fatalf("RecentHeadlines failed: %v", err)
	}
	if len(headlines) != 2 {
		t.Fatalf("headlines = %d, want 2", len(headlines))
	}
	if headlines[0].Date != "2025-03-14" {
		t.Errorf("Date = %q, want 2025-03-14", headlines[0].Date)
	}
}

func TestArchive_FailureReportsNotPanics(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "bare.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// No Migrate: every statement should fail and roll back.
	s := NewStore(db)

	res := s.Archive(context.Background(), testSubmission("https://a.example/1"), mission.Default("ai-news"), "run1", "2025-03-14")
	if res.Saved {
		t.Error("expected Saved = false on schema-less database")
	}
	if res.Err == "" {
		t.Error("expected an error description")
	}
	if res.DigestID != 0 || res.ItemsSaved != 0 {
		t.Errorf("partial results leaked: id=%d items=%d", res.DigestID, res.ItemsSaved)
	}
}
