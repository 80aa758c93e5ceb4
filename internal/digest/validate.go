package digest

import (
	"fmt"

	"github.com/Aceek/daily-ai-webhook/internal/mission"
)

// Validate checks a submission against a mission's schema and returns all
// problems found, one message per violation. An empty slice means the
// submission is acceptable.
func Validate(s *Submission, m *mission.Mission) []string {
	var errs []string

	for category, items := range s.Sections {
		if !m.HasCategory(category) {
			errs = append(errs, fmt.Sprintf("unknown section %q", category))
			continue
		}
		for i, item := range items {
			errs = append(errs, validateItem(category, i, item)...)
		}
	}

	if len(s.Sections[m.Primary]) == 0 {
		errs = append(errs, fmt.Sprintf("%s: at least 1 item required", m.Primary))
	}

	for i, e := range s.Excluded {
		errs = append(errs, validateExcluded(i, e, m)...)
	}

	errs = append(errs, validateMetadata(s.Metadata)...)

	return errs
}

func validateItem(category string, i int, item Item) []string {
	var errs []string
	if item.Title == "" {
		errs = append(errs, fmt.Sprintf("%s[%d]: missing 'title'", category, i))
	}
	if item.URL == "" {
		errs = append(errs, fmt.Sprintf("%s[%d]: missing 'url'", category, i))
	}
	if item.Summary == "" {
		errs = append(errs, fmt.Sprintf("%s[%d]: missing 'summary'", category, i))
	}
	if item.Source == "" {
		errs = append(errs, fmt.Sprintf("%s[%d]: missing 'source'", category, i))
	}
	if item.Confidence <= 0 || item.Confidence > 1 {
		errs = append(errs, fmt.Sprintf("%s[%d]: confidence must be in (0, 1], got %g", category, i, item.Confidence))
	}
	return errs
}

func validateExcluded(i int, e ExcludedItem, m *mission.Mission) []string {
	var errs []string
	if e.Title == "" {
		errs = append(errs, fmt.Sprintf("excluded[%d]: missing 'title'", i))
	}
	if e.URL == "" {
		errs = append(errs, fmt.Sprintf("excluded[%d]: missing 'url'", i))
	}
	if e.Category == "" {
		errs = append(errs, fmt.Sprintf("excluded[%d]: missing 'category'", i))
	} else if !m.HasCategory(e.Category) {
		errs = append(errs, fmt.Sprintf("excluded[%d]: unknown category %q", i, e.Category))
	}
	if !ValidReasons[e.Reason] {
		errs = append(errs, fmt.Sprintf("excluded[%d]: invalid reason %q", i, e.Reason))
	}
	if e.Score < 1 || e.Score > 10 {
		errs = append(errs, fmt.Sprintf("excluded[%d]: score must be between 1 and 10, got %d", i, e.Score))
	}
	return errs
}

func validateMetadata(md Metadata) []string {
	var errs []string
	if md.ArticlesAnalyzed == nil {
		errs = append(errs, "metadata: missing 'articles_analyzed'")
	}
	if md.WebSearches == nil {
		errs = append(errs, "metadata: missing 'web_searches'")
	}
	if md.ResearchDoc == nil {
		errs = append(errs, "metadata: missing 'research_doc'")
	}
	return errs
}
