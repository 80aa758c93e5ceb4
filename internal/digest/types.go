// Package digest defines the digest submission payload the agent produces
// and the validation rules it must satisfy before archival.
package digest

// ExclusionReason classifies why an article was left out of the digest.
type ExclusionReason string

const (
	// ReasonOffTopic marks articles outside the mission's subject.
	ReasonOffTopic ExclusionReason = "off_topic"
	// ReasonDuplicate marks articles already covered by a selected item.
	ReasonDuplicate ExclusionReason = "duplicate"
	// ReasonLowPriority marks articles judged not worth surfacing today.
	ReasonLowPriority ExclusionReason = "low_priority"
	// ReasonOutdated marks articles describing stale developments.
	ReasonOutdated ExclusionReason = "outdated"
)

// ValidReasons is the closed set of accepted exclusion reasons.
var ValidReasons = map[ExclusionReason]bool{
	ReasonOffTopic:    true,
	ReasonDuplicate:   true,
	ReasonLowPriority: true,
	ReasonOutdated:    true,
}

// Item is one selected article in a digest section.
type Item struct {
	// Title is the item headline.
	Title string `json:"title"`
	// URL is the canonical article link.
	URL string `json:"url"`
	// Summary is the agent's one-paragraph summary.
	Summary string `json:"summary"`
	// Source names the publisher.
	Source string `json:"source"`
	// Confidence is the agent's selection confidence in (0, 1].
	Confidence float64 `json:"confidence"`
}

// ExcludedItem records an article the agent dropped and why.
type ExcludedItem struct {
	// Title is the dropped article's headline.
	Title string `json:"title"`
	// URL is the dropped article's link.
	URL string `json:"url"`
	// Category is the mission category the article would have landed in.
	Category string `json:"category"`
	// Reason is one of the ValidReasons values.
	Reason ExclusionReason `json:"reason"`
	// Score is the agent's relevance score, 1 (lowest) to 10 (highest).
	Score int `json:"score"`
}

// Metadata carries the agent's self-reported analysis accounting. Counters
// are pointers so that an absent field can be told apart from a zero.
type Metadata struct {
	// ArticlesAnalyzed is how many input articles the agent examined.
	ArticlesAnalyzed *int `json:"articles_analyzed"`
	// WebSearches is how many searches the agent performed.
	WebSearches *int `json:"web_searches"`
	// ResearchDoc reports whether the agent wrote research.md.
	ResearchDoc *bool `json:"research_doc"`
}

// Submission is the payload the agent hands over for validation and
// archival. Sections is keyed by mission category name.
type Submission struct {
	// Mission is the mission id the digest was produced for.
	Mission string `json:"mission,omitempty"`
	// Date is the digest date in YYYY-MM-DD form.
	Date string `json:"date,omitempty"`
	// Sections maps category name to the selected items.
	Sections map[string][]Item `json:"sections"`
	// Excluded lists the dropped articles with reasons.
	Excluded []ExcludedItem `json:"excluded"`
	// Metadata is the agent's analysis accounting.
	Metadata Metadata `json:"metadata"`
}

// SelectedCount returns the total number of items across all sections.
func (s *Submission) SelectedCount() int {
	n := 0
	for _, items := range s.Sections {
		n += len(items)
	}
	return n
}

// ExclusionBreakdown tallies excluded items per reason.
func (s *Submission) ExclusionBreakdown() map[ExclusionReason]int {
	breakdown := make(map[ExclusionReason]int)
	for _, e := range s.Excluded {
		breakdown[e.Reason]++
	}
	return breakdown
}

// Digest is the archived form of an accepted submission as written to
// digest.json and stored in the database.
type Digest struct {
	// Mission is the mission id.
	Mission string `json:"mission"`
	// Date is the digest date in YYYY-MM-DD form.
	Date string `json:"date"`
	// ItemCount is the number of selected items.
	ItemCount int `json:"item_count"`
	// ExcludedCount is the number of dropped articles.
	ExcludedCount int `json:"excluded_count"`
	// Sections maps category name to the selected items.
	Sections map[string][]Item `json:"sections"`
	// Excluded lists the dropped articles.
	Excluded []ExcludedItem `json:"excluded"`
	// ExclusionBreakdown tallies drops per reason.
	ExclusionBreakdown map[ExclusionReason]int `json:"exclusion_breakdown"`
	// Metadata is the agent's analysis accounting.
	Metadata Metadata `json:"metadata"`
	// SubmittedAt is the archival time in RFC 3339 form.
	SubmittedAt string `json:"submitted_at"`
	// DigestID is the database row id, present only when the archive
	// write succeeded.
	DigestID int64 `json:"digest_id,omitempty"`
}

// BuildDigest assembles the archived digest form from an accepted
// submission.
func BuildDigest(s *Submission, mission, date, submittedAt string) *Digest {
	return &Digest{
		Mission:            mission,
		Date:               date,
		ItemCount:          s.SelectedCount(),
		ExcludedCount:      len(s.Excluded),
		Sections:           s.Sections,
		Excluded:           s.Excluded,
		ExclusionBreakdown: s.ExclusionBreakdown(),
		Metadata:           s.Metadata,
		SubmittedAt:        submittedAt,
	}
}
