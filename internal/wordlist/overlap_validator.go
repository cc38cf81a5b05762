package wordlist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
)

// OverlapValidator finds entries that shadow each other: exact
// duplicates, phrases a shorter entry already covers, and related terms
// that collide with primary terms or with other entries.
type OverlapValidator struct{}

// NewOverlapValidator creates a new OverlapValidator instance.
func NewOverlapValidator() *OverlapValidator {
	return &OverlapValidator{}
}

// Validate performs duplicate and overlap validation.
func (v *OverlapValidator) Validate(wordlist *config.Wordlist) []Issue {
	var issues []Issue

	issues = append(issues, v.checkExactDuplicates(wordlist)...)
	issues = append(issues, v.checkCoveredPhrases(wordlist)...)
	issues = append(issues, v.checkRelatedTermCollisions(wordlist)...)

	return issues
}

// checkExactDuplicates finds terms that appear more than once. The
// matcher lowercases everything, so the comparison is case-insensitive.
func (v *OverlapValidator) checkExactDuplicates(wordlist *config.Wordlist) []Issue {
	var issues []Issue

	seen := make(map[string]int)

	for i, entry := range wordlist.Terms {
		key := strings.ToLower(entry.Term)
		if prevIndex, exists := seen[key]; exists {
			issues = append(issues, Issue{
				Type: "exact_duplicate",
				Description: fmt.Sprintf("Term '%s' appears multiple times (positions %d and %d)",
					entry.Term, prevIndex, i),
				Term:     entry.Term,
				Location: i,
			})
		} else {
			seen[key] = i
		}
	}

	return issues
}

// checkCoveredPhrases finds entries that a shorter entry already
// matches. Every text the longer phrase would hit also hits the shorter
// term, so the longer entry only earns its place when it escalates the
// severity.
func (v *OverlapValidator) checkCoveredPhrases(wordlist *config.Wordlist) []Issue {
	var issues []Issue

	type indexedEntry struct {
		entry config.WordlistEntry
		index int
	}

	entries := make([]indexedEntry, len(wordlist.Terms))
	for i, entry := range wordlist.Terms {
		entries[i] = indexedEntry{entry, i}
	}

	sort.Slice(entries, func(i, j int) bool {
		return len(entries[i].entry.Term) < len(entries[j].entry.Term)
	})

	for i, longer := range entries {
		for j := range i {
			shorter := entries[j]
			if !covers(shorter.entry, longer.entry) {
				continue
			}

			if severityRank(longer.entry.Severity) > severityRank(shorter.entry.Severity) {
				continue
			}

			issues = append(issues, Issue{
				Type: "covered_phrase",
				Description: fmt.Sprintf("Term '%s' is redundant: the shorter term '%s' already matches everything it would, at the same or higher severity",
					longer.entry.Term, shorter.entry.Term),
				Term:     longer.entry.Term,
				Location: longer.index,
			})

			break
		}
	}

	return issues
}

// checkRelatedTermCollisions finds related terms that self-reference,
// duplicate a primary term, or appear under several entries at once.
func (v *OverlapValidator) checkRelatedTermCollisions(wordlist *config.Wordlist) []Issue {
	var issues []Issue

	primaryIndex := make(map[string]int, len(wordlist.Terms))
	for i, entry := range wordlist.Terms {
		primaryIndex[strings.ToLower(entry.Term)] = i
	}

	relatedTermUsage := make(map[string][]int)

	for i, entry := range wordlist.Terms {
		for _, relatedTerm := range entry.RelatedTerms {
			key := strings.ToLower(relatedTerm)

			if strings.EqualFold(entry.Term, relatedTerm) {
				issues = append(issues, Issue{
					Type:        "self_reference",
					Description: fmt.Sprintf("Term '%s' lists itself as a related term", entry.Term),
					Term:        entry.Term,
					Location:    i,
				})
			} else if _, exists := primaryIndex[key]; exists {
				issues = append(issues, Issue{
					Type: "cross_reference_duplicate",
					Description: fmt.Sprintf("Related term '%s' in entry '%s' also exists as a primary term",
						relatedTerm, entry.Term),
					Term:     entry.Term,
					Location: i,
				})
			}

			relatedTermUsage[key] = append(relatedTermUsage[key], i)
		}
	}

	for relatedTerm, indices := range relatedTermUsage {
		if len(indices) < 2 {
			continue
		}

		primaryTerms := make([]string, 0, len(indices))
		for _, index := range indices {
			primaryTerms = append(primaryTerms, fmt.Sprintf("'%s'", wordlist.Terms[index].Term))
		}

		issues = append(issues, Issue{
			Type: "duplicate_related_term",
			Description: fmt.Sprintf("Related term '%s' appears in multiple entries (%s); consider making it a primary term",
				relatedTerm, strings.Join(primaryTerms, ", ")),
			Term:     wordlist.Terms[indices[0]].Term,
			Location: indices[0],
		})
	}

	return issues
}

// covers reports whether every text the longer entry matches is also
// matched by the shorter one, mirroring the matcher's substring and
// whole-word modes.
func covers(shorter, longer config.WordlistEntry) bool {
	shortTerm := strings.ToLower(shorter.Term)
	longTerm := strings.ToLower(longer.Term)

	if shortTerm == longTerm {
		return false
	}

	// A substring-mode term fires on any text containing it, so plain
	// containment is enough.
	if shorter.AllowSubstring {
		return strings.Contains(longTerm, shortTerm)
	}

	// A whole-word term covers the longer phrase only when it appears in
	// it on word boundaries, and only when the longer entry matches on
	// word boundaries too.
	if longer.AllowSubstring {
		return false
	}

	return strings.Contains(" "+longTerm+" ", " "+shortTerm+" ")
}

// severityRank parses an entry severity for comparison, treating
// unparseable values as none. The field validator reports those.
func severityRank(s string) enum.Severity {
	severity, err := enum.SeverityString(s)
	if err != nil {
		return enum.SeverityNone
	}

	return severity
}
