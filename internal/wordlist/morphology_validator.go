package wordlist

import (
	"fmt"
	"strings"

	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/pkg/utils"
)

const (
	// Minimum lengths before suffix stripping makes sense; anything
	// shorter yields degenerate bases like "a" or "fr".
	minPluralLength = 2
	minPastLength   = 4
)

// MorphologyValidator finds entries the matcher already reaches through
// its own inflection handling. Whole-word single-word terms are expanded
// with -s and -ed forms at compile time, so hand-written variants of an
// existing base term are dead weight.
type MorphologyValidator struct{}

// NewMorphologyValidator creates a new MorphologyValidator instance.
func NewMorphologyValidator() *MorphologyValidator {
	return &MorphologyValidator{}
}

// Validate performs morphological redundancy validation.
func (v *MorphologyValidator) Validate(wordlist *config.Wordlist) []Issue {
	primaryIndex := make(map[string]int, len(wordlist.Terms))
	for i, entry := range wordlist.Terms {
		primaryIndex[strings.ToLower(entry.Term)] = i
	}

	var issues []Issue

	for i, entry := range wordlist.Terms {
		issues = append(issues, v.checkPrimaryTerm(wordlist, entry, i, primaryIndex)...)
		issues = append(issues, v.checkRelatedTerms(wordlist, entry, i, primaryIndex)...)
	}

	return issues
}

// checkPrimaryTerm flags a primary term that is itself a generated
// inflection of another entry's base term.
func (v *MorphologyValidator) checkPrimaryTerm(
	wordlist *config.Wordlist, entry config.WordlistEntry, location int, primaryIndex map[string]int,
) []Issue {
	// Substring terms match inside words, which generated whole-word
	// variants never replicate, so they are exempt.
	if entry.AllowSubstring || strings.Contains(entry.Term, " ") {
		return nil
	}

	for _, base := range inflectionBases(strings.ToLower(entry.Term)) {
		baseIndex, exists := primaryIndex[base]
		if !exists || baseIndex == location || !expandsInflections(wordlist.Terms[baseIndex]) {
			continue
		}

		return []Issue{{
			Type: "morphological_redundancy",
			Description: fmt.Sprintf("Term '%s' is an inflection of '%s', which the matcher already expands; remove it",
				entry.Term, wordlist.Terms[baseIndex].Term),
			Term:     entry.Term,
			Location: location,
		}}
	}

	return nil
}

// checkRelatedTerms flags related terms that repeat inflections the
// matcher derives on its own, either from the entry's primary term or
// from another entry's.
func (v *MorphologyValidator) checkRelatedTerms(
	wordlist *config.Wordlist, entry config.WordlistEntry, location int, primaryIndex map[string]int,
) []Issue {
	var issues []Issue

	ownForms := make(map[string]struct{})
	if expandsInflections(entry) {
		for _, form := range utils.GenerateMorphologicalVariations(strings.ToLower(entry.Term)) {
			ownForms[form] = struct{}{}
		}
	}

	for _, relatedTerm := range entry.RelatedTerms {
		lower := strings.ToLower(relatedTerm)

		if _, exists := ownForms[lower]; exists && lower != strings.ToLower(entry.Term) {
			issues = append(issues, Issue{
				Type: "morphological_redundancy",
				Description: fmt.Sprintf("Related term '%s' in entry '%s' is an inflection the matcher generates on its own; remove it",
					relatedTerm, entry.Term),
				Term:     entry.Term,
				Location: location,
			})

			continue
		}

		if strings.Contains(lower, " ") {
			continue
		}

		for _, base := range inflectionBases(lower) {
			baseIndex, exists := primaryIndex[base]
			if !exists || baseIndex == location || !expandsInflections(wordlist.Terms[baseIndex]) {
				continue
			}

			issues = append(issues, Issue{
				Type: "morphological_redundancy",
				Description: fmt.Sprintf("Related term '%s' in entry '%s' is an inflection of the primary term '%s'; remove it",
					relatedTerm, entry.Term, wordlist.Terms[baseIndex].Term),
				Term:     entry.Term,
				Location: location,
			})

			break
		}
	}

	return issues
}

// expandsInflections reports whether the matcher generates -s and -ed
// forms for the entry's primary term. Only whole-word single-word terms
// are expanded.
func expandsInflections(entry config.WordlistEntry) bool {
	return !entry.AllowSubstring && !strings.Contains(entry.Term, " ")
}

// inflectionBases returns the base terms whose generated variations
// include the given term. It is the inverse of
// utils.GenerateMorphologicalVariations.
func inflectionBases(term string) []string {
	var bases []string

	if strings.HasSuffix(term, "s") && len(term) > minPluralLength {
		bases = append(bases, strings.TrimSuffix(term, "s"))
	}

	if strings.HasSuffix(term, "ed") && len(term) > minPastLength {
		// "traded" strips to "trade", while "played" strips to "play".
		bases = append(bases, strings.TrimSuffix(term, "d"), strings.TrimSuffix(term, "ed"))
	}

	return bases
}
