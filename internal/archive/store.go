package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
)

// ArchiveResult reports the outcome of one digest archival attempt.
type ArchiveResult struct {
	// Saved reports whether the transaction committed.
	Saved bool
	// Err describes the failure when Saved is false.
	Err string
	// DigestID is the daily_digests row id for (mission, date).
	DigestID int64
	// ItemsSaved is the number of new article rows written. Articles
	// whose URL was already archived do not count.
	ItemsSaved int
}

// Store persists accepted digests.
type Store struct {
	db *DB
}

// NewStore creates a store over an opened and migrated database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Archive stores an accepted submission in a single transaction. Running
// it twice for the same (mission, date) updates the existing digest row
// rather than creating a second one, and articles whose URL is already
// archived are silently skipped. Archive never returns an error: failures
// are reported in the result so callers can still write files and render
// summaries.
func (s *Store) Archive(ctx context.Context, sub *digest.Submission, m *mission.Mission, runID, date string) *ArchiveResult {
	res := &ArchiveResult{}

	err := s.db.Transaction(func(tx *sql.Tx) error {
		now := formatTime(time.Now())

		digestID, err := upsertDigest(ctx, tx, m.ID, date, runID, sub, now)
		if err != nil {
			return err
		}
		res.DigestID = digestID

		for _, category := range m.Categories {
			items := sub.Sections[category]
			if len(items) == 0 {
				continue
			}

			categoryID, err := getOrCreateCategory(ctx, tx, m.ID, category, m.Categories)
			if err != nil {
				return err
			}

			for _, item := range items {
				n, err := insertSelected(ctx, tx, m.ID, categoryID, digestID, item, now)
				if err != nil {
					return err
				}
				res.ItemsSaved += int(n)
			}
		}

		for _, e := range sub.Excluded {
			var categoryID any
			if e.Category != "" {
				id, err := getOrCreateCategory(ctx, tx, m.ID, e.Category, m.Categories)
				if err != nil {
					return err
				}
				categoryID = id
			}

			n, err := insertExcluded(ctx, tx, m.ID, categoryID, e, now)
			if err != nil {
				return err
			}
			res.ItemsSaved += int(n)
		}

		return nil
	})
	if err != nil {
		log.Printf("[archive] save failed: %v", err)
		res.Err = err.Error()
		res.DigestID = 0
		res.ItemsSaved = 0
		return res
	}

	res.Saved = true
	return res
}

// upsertDigest creates or refreshes the daily_digests row for
// (mission, date) and returns its id.
func upsertDigest(ctx context.Context, tx *sql.Tx, missionID, date, runID string, sub *digest.Submission, now string) (int64, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO daily_digests (mission_id, date, execution_id, item_count, excluded_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mission_id, date) DO UPDATE SET
			execution_id = excluded.execution_id,
			item_count = excluded.item_count,
			excluded_count = excluded.excluded_count,
			updated_at = excluded.updated_at
	`, missionID, date, runID, sub.SelectedCount(), len(sub.Excluded), now, now)
	if err != nil {
		return 0, fmt.Errorf("upsert digest: %w", err)
	}

	var id int64
	row := tx.QueryRowContext(ctx, `
		SELECT id FROM daily_digests WHERE mission_id = ? AND date = ?
	`, missionID, date)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup digest id: %w", err)
	}
	return id, nil
}

// getOrCreateCategory resolves the category row for (mission, name),
// creating it on first use. Position follows the mission's declared order.
func getOrCreateCategory(ctx context.Context, tx *sql.Tx, missionID, name string, ordered []string) (int64, error) {
	position := 0
	for i, c := range ordered {
		if c == name {
			position = i
			break
		}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO categories (mission_id, name, position) VALUES (?, ?, ?)
		ON CONFLICT(mission_id, name) DO NOTHING
	`, missionID, name, position)
	if err != nil {
		return 0, fmt.Errorf("create category %s: %w", name, err)
	}

	var id int64
	row := tx.QueryRowContext(ctx, `
		SELECT id FROM categories WHERE mission_id = ? AND name = ?
	`, missionID, name)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup category %s: %w", name, err)
	}
	return id, nil
}

func insertSelected(ctx context.Context, tx *sql.Tx, missionID string, categoryID, digestID int64, item digest.Item, now string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO articles (mission_id, category_id, digest_id, title, url, summary, source, confidence, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'selected', ?)
		ON CONFLICT(url) DO NOTHING
	`, missionID, categoryID, digestID, item.Title, item.URL, item.Summary, item.Source, item.Confidence, now)
	if err != nil {
		return 0, fmt.Errorf("insert article %s: %w", item.URL, err)
	}
	return result.RowsAffected()
}

func insertExcluded(ctx context.Context, tx *sql.Tx, missionID string, categoryID any, e digest.ExcludedItem, now string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO articles (mission_id, category_id, title, url, status, exclusion_reason, score, created_at)
		VALUES (?, ?, ?, ?, 'excluded', ?, ?, ?)
		ON CONFLICT(url) DO NOTHING
	`, missionID, categoryID, e.Title, e.URL, string(e.Reason), e.Score, now)
	if err != nil {
		return 0, fmt.Errorf("insert excluded article %s: %w", e.URL, err)
	}
	return result.RowsAffected()
}

// FilterKnownURLs returns the subset of urls already archived for the
// mission within the last days days. It lets collectors drop articles the
// digest has covered before.
func (s *Store) FilterKnownURLs(ctx context.Context, missionID string, urls []string, days int) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	cutoff := formatTime(time.Now().AddDate(0, 0, -days))

	known := make([]string, 0, len(urls))
	for _, url := range urls {
		var n int
		row := s.db.QueryRow(`
			SELECT COUNT(*) FROM articles
			WHERE mission_id = ? AND url = ? AND created_at >= ?
		`, missionID, url, cutoff)
		if err := row.Scan(&n); err != nil {
			return nil, fmt.Errorf("check url %s: %w", url, err)
		}
		if n > 0 {
			known = append(known, url)
		}
	}
	return known, nil
}

// DigestSummary is one row of the digest history listing.
type DigestSummary struct {
	Mission       string
	Date          string
	ExecutionID   string
	ItemCount     int
	ExcludedCount int
}

// RecentDigests returns the most recent archived digests, newest first.
func (s *Store) RecentDigests(ctx context.Context, limit int) ([]DigestSummary, error) {
	rows, err := s.db.Query(`
		SELECT mission_id, date, COALESCE(execution_id, ''), item_count, excluded_count
		FROM daily_digests
		ORDER BY date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent digests: %w", err)
	}
	defer rows.Close()

	var digests []DigestSummary
	for rows.Next() {
		var d DigestSummary
		if err := rows.Scan(&d.Mission, &d.Date, &d.ExecutionID, &d.ItemCount, &d.ExcludedCount); err != nil {
			return nil, fmt.Errorf("scan digest: %w", err)
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

// Headline is a previously selected article title with its digest date.
type Headline struct {
	Title string
	URL   string
	Date  string
}

// RecentHeadlines returns the selected headlines archived for the mission
// within the last days days, newest first. Agents use it to avoid
// re-reporting stories already surfaced.
func (s *Store) RecentHeadlines(ctx context.Context, missionID string, days int) ([]Headline, error) {
	cutoff := formatTime(time.Now().AddDate(0, 0, -days))

	rows, err := s.db.Query(`
		SELECT a.title, a.url, d.date
		FROM articles a
		JOIN daily_digests d ON a.digest_id = d.id
		WHERE a.mission_id = ? AND a.status = 'selected' AND a.created_at >= ?
		ORDER BY d.date DESC, a.id DESC
	`, missionID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query recent headlines: %w", err)
	}
	defer rows.Close()

	var headlines []Headline
	for rows.Next() {
		var h Headline
		if err := rows.Scan(&h.Title, &h.URL, &h.Date); err != nil {
			return nil, fmt.Errorf("scan headline: %w", err)
		}
		headlines = append(headlines, h)
	}
	return headlines, rows.Err()
}
