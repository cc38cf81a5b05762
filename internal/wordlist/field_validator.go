package wordlist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/trygglabs/trygg/internal/classify"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
)

const (
	// Bounds on term length. Entries may be multi-word phrases, so the
	// cap is generous, but a one-letter term or a paragraph is a mistake.
	minTermLength = 2
	maxTermLength = 40

	// Substring-mode terms match inside words, so very short ones fire
	// on far too much innocent text ("ass" inside "class").
	minSubstringTermLength = 5
)

// FieldValidator checks required fields and enum values. The severity
// and category vocabulary comes from the classifier itself, so the lint
// stays in lockstep with what the matcher will accept at startup.
type FieldValidator struct{}

// NewFieldValidator creates a new FieldValidator instance.
func NewFieldValidator() *FieldValidator {
	return &FieldValidator{}
}

// Validate performs required field and enum validation.
func (v *FieldValidator) Validate(wordlist *config.Wordlist) []Issue {
	var issues []Issue

	validCategories := []string{
		classify.CategorySelfHarm,
		classify.CategoryViolence,
		classify.CategoryGrooming,
		classify.CategoryAbuse,
	}

	for i, entry := range wordlist.Terms {
		if strings.TrimSpace(entry.Term) == "" {
			issues = append(issues, Issue{
				Type:        "empty_required_field",
				Description: fmt.Sprintf("Entry at position %d has an empty term", i),
				Term:        "",
				Location:    i,
			})

			continue
		}

		if strings.TrimSpace(entry.Meaning) == "" {
			issues = append(issues, Issue{
				Type:        "empty_required_field",
				Description: fmt.Sprintf("Term '%s' has no meaning", entry.Term),
				Term:        entry.Term,
				Location:    i,
			})
		}

		// The classifier skips entries whose severity does not parse or
		// parses to none, so either one means the term silently never
		// matches anything.
		if severity, err := enum.SeverityString(entry.Severity); err != nil || severity == enum.SeverityNone {
			issues = append(issues, Issue{
				Type: "invalid_severity",
				Description: fmt.Sprintf("Term '%s' has invalid severity '%s' (must be: sensitive or critical)",
					entry.Term, entry.Severity),
				Term:     entry.Term,
				Location: i,
			})
		}

		if !slices.Contains(validCategories, entry.Category) {
			issues = append(issues, Issue{
				Type: "invalid_category",
				Description: fmt.Sprintf("Term '%s' has invalid category '%s' (must be: %s)",
					entry.Term, entry.Category, strings.Join(validCategories, ", ")),
				Term:     entry.Term,
				Location: i,
			})
		}

		issues = append(issues, v.checkTermLength(entry.Term, entry, i)...)

		if entry.AllowSubstring && len(entry.Term) < minSubstringTermLength {
			issues = append(issues, Issue{
				Type: "substring_term_too_short",
				Description: fmt.Sprintf("Term '%s' allows substring matching but is only %d characters; it will match inside unrelated words",
					entry.Term, len(entry.Term)),
				Term:     entry.Term,
				Location: i,
			})
		}

		for j, relatedTerm := range entry.RelatedTerms {
			if strings.TrimSpace(relatedTerm) == "" {
				issues = append(issues, Issue{
					Type: "empty_related_term",
					Description: fmt.Sprintf("Term '%s' has an empty related term at position %d",
						entry.Term, j),
					Term:     entry.Term,
					Location: i,
				})

				continue
			}

			issues = append(issues, v.checkTermLength(relatedTerm, entry, i)...)
		}
	}

	return issues
}

// checkTermLength flags terms outside the sane length bounds.
func (v *FieldValidator) checkTermLength(term string, entry config.WordlistEntry, location int) []Issue {
	var issues []Issue

	if len(term) > maxTermLength {
		issues = append(issues, Issue{
			Type: "term_too_long",
			Description: fmt.Sprintf("Term '%s' in entry '%s' is too long (%d characters)",
				term, entry.Term, len(term)),
			Term:     entry.Term,
			Location: location,
		})
	}

	if len(term) < minTermLength {
		issues = append(issues, Issue{
			Type: "term_too_short",
			Description: fmt.Sprintf("Term '%s' in entry '%s' is too short (%d characters)",
				term, entry.Term, len(term)),
			Term:     entry.Term,
			Location: location,
		})
	}

	return issues
}
