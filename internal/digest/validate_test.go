package digest

import (
	"strings"
	"testing"

	"github.com/Aceek/daily-ai-webhook/internal/mission"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func validSubmission() *Submission {
	return &Submission{
		Sections: map[string][]Item{
			"headlines": {
				{
					Title:      "Model release",
					URL:        "https://example.com/a",
					Summary:    "A new model shipped.",
					Source:     "Example",
					Confidence: 0.9,
				},
			},
		},
		Excluded: []ExcludedItem{
			{Title: "Old news", URL: "https://example.com/old", Category: "headlines", Reason: ReasonOutdated, Score: 3},
		},
		Metadata: Metadata{
			ArticlesAnalyzed: intPtr(12),
			WebSearches:      intPtr(4),
			ResearchDoc:      boolPtr(true),
		},
	}
}

func assertHasError(t *testing.T, errs []string, want string) {
	t.Helper()
	for _, e := range errs {
		if strings.Contains(e, want) {
			return
		}
	}
	t.Errorf("missing error containing %q in %v", want, errs)
}

func TestValidate_AcceptsValidSubmission(t *testing.T) {
	errs := Validate(validSubmission(), mission.Default("ai-news"))
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidate_MissingItemFields(t *testing.T) {
	s := validSubmission()
	s.Sections["headlines"] = append(s.Sections["headlines"], Item{Confidence: 0.5})

	errs := Validate(s, mission.Default("ai-news"))
	assertHasError(t, errs, "headlines[1]: missing 'title'")
	assertHasError(t, errs, "headlines[1]: missing 'url'")
	assertHasError(t, errs, "headlines[1]: missing 'summary'")
	assertHasError(t, errs, "headlines[1]: missing 'source'")
}

func TestValidate_ConfidenceRange(t *testing.T) {
	for _, c := range []float64{0, -0.1, 1.5} {
		s := validSubmission()
		s.Sections["headlines"][0].Confidence = c

		errs := Validate(s, mission.Default("ai-news"))
		assertHasError(t, errs, "headlines[0]: confidence must be in (0, 1]")
	}
}

func TestValidate_PrimarySectionRequired(t *testing.T) {
	s := validSubmission()
	s.Sections = map[string][]Item{"research": {s.Sections["headlines"][0]}}

	errs := Validate(s, mission.Default("ai-news"))
	assertHasError(t, errs, "headlines: at least 1 item required")
}

func TestValidate_UnknownSection(t *testing.T) {
	s := validSubmission()
	s.Sections["sports"] = []Item{{Title: "t", URL: "u", Summary: "s", Confidence: 0.5}}

	errs := Validate(s, mission.Default("ai-news"))
	assertHasError(t, errs, `unknown section "sports"`)
}

func TestValidate_ExclusionReason(t *testing.T) {
	s := validSubmission()
	s.Excluded = append(s.Excluded, ExcludedItem{
		Title: "t", URL: "u", Category: "headlines", Reason: "boring", Score: 5,
	})

	errs := Validate(s, mission.Default("ai-news"))
	assertHasError(t, errs, `excluded[1]: invalid reason "boring"`)
}

func TestValidate_ExcludedCategory(t *testing.T) {
	s := validSubmission()
	s.Excluded[0].Category = ""

	errs := Validate(s, mission.Default("ai-news"))
	assertHasError(t, errs, "excluded[0]: missing 'category'")

	s = validSubmission()
	s.Excluded[0].Category = "sports"

	errs = Validate(s, mission.Default("ai-news"))
	assertHasError(t, errs, `excluded[0]: unknown category "sports"`)
}

func TestValidate_ScoreBounds(t *testing.T) {
	cases := []struct {
		score int
		bad   bool
	}{
		{0, true},
		{1, false},
		{10, false},
		{11, true},
	}
	for _, tc := range cases {
		s := validSubmission()
		s.Excluded[0].Score = tc.score

		errs := Validate(s, mission.Default("ai-news"))
		found := false
		for _, e := range errs {
			if strings.Contains(e, "score must be between 1 and 10") {
				found = true
			}
		}
		if found != tc.bad {
			t.Errorf("score %d: bad=%v, errors=%v", tc.score, tc.bad, errs)
		}
	}
}

func TestValidate_MissingMetadata(t *testing.T) {
	s := validSubmission()
	s.Metadata = Metadata{}

	errs := Validate(s, mission.Default("ai-news"))
	assertHasError(t, errs, "metadata: missing 'articles_analyzed'")
	assertHasError(t, errs, "metadata: missing 'web_searches'")
	assertHasError(t, errs, "metadata: missing 'research_doc'")
}

func TestValidate_ZeroCountersAreValid(t *testing.T) {
	s := validSubmission()
	s.Metadata.ArticlesAnalyzed = intPtr(0)
	s.Metadata.WebSearches = intPtr(0)
	s.Metadata.ResearchDoc = boolPtr(false)

	if errs := Validate(s, mission.Default("ai-news")); len(errs) != 0 {
		t.Errorf("expected no errors for zero counters, got %v", errs)
	}
}

func TestSelectedCount(t *testing.T) {
	s := validSubmission()
	s.Sections["research"] = []Item{
		{Title: "a", URL: "u1", Summary: "s", Confidence: 0.5},
		{Title: "b", URL: "u2", Summary: "s", Confidence: 0.5},
	}

	if got := s.SelectedCount(); got != 3 {
		t.Errorf("SelectedCount() = %d, want 3", got)
	}
}

func TestExclusionBreakdown(t *testing.T) {
	s := validSubmission()
	s.Excluded = append(s.Excluded,
		ExcludedItem{Title: "t", URL: "u", Reason: ReasonDuplicate, Score: 2},
		ExcludedItem{Title: "t", URL: "u", Reason: ReasonDuplicate, Score: 2},
	)

	b := s.ExclusionBreakdown()
	if b[ReasonDuplicate] != 2 || b[ReasonOutdated] != 1 {
		t.Errorf("breakdown = %v", b)
	}
}

func TestBuildDigest(t *testing.T) {
	s := validSubmission()
	d := BuildDigest(s, "ai-news", "2025-03-14", "2025-03-14T15:00:00Z")

	if d.ItemCount != 1 || d.ExcludedCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", d.ItemCount, d.ExcludedCount)
	}
	if d.Mission != "ai-news" || d.Date != "2025-03-14" {
		t.Errorf("identity = %s/%s", d.Mission, d.Date)
	}
	if d.DigestID != 0 {
		t.Errorf("DigestID should be unset before archival, got %d", d.DigestID)
	}
}
