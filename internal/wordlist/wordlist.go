// Package wordlist lints the operator wordlist that feeds the keyword
// classifier. Every check mirrors how the classifier actually compiles
// entries, so a clean report means the deployed list matches what its
// curator intended.
package wordlist

import (
	"github.com/trygglabs/trygg/internal/setup/config"
)

// Issue is a single problem found in a wordlist.
type Issue struct {
	Type        string
	Description string
	Term        string
	Location    int
}

// Validator checks one aspect of a wordlist.
type Validator interface {
	Validate(wordlist *config.Wordlist) []Issue
}

// ValidateWordlist runs every validator and collects their issues.
func ValidateWordlist(wordlist *config.Wordlist) []Issue {
	if wordlist == nil || len(wordlist.Terms) == 0 {
		return []Issue{{
			Type:        "empty_wordlist",
			Description: "Wordlist is empty or could not be loaded",
			Term:        "",
			Location:    -1,
		}}
	}

	validators := []Validator{
		NewFieldValidator(),
		NewOverlapValidator(),
		NewMorphologyValidator(),
	}

	var issues []Issue
	for _, validator := range validators {
		issues = append(issues, validator.Validate(wordlist)...)
	}

	return issues
}
