package classify

import (
	"context"
	"strings"
	"unicode"

	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/pkg/utils"
	"go.uber.org/zap"
)

// KeywordClassifier matches content against a curated term list. Matching
// runs on normalized text so case, diacritics and doubled whitespace do
// not defeat it, and whole-word terms are expanded with simple
// morphological variations at build time.
type KeywordClassifier struct {
	matchers   []keywordMatcher
	normalizer *utils.TextNormalizer
	logger     *zap.Logger
}

// keywordMatcher is one compiled term with every form it matches on.
type keywordMatcher struct {
	term      string
	variants  []string
	severity  enum.Severity
	category  string
	substring bool
}

// NewKeywordClassifier compiles the built-in term list plus any operator
// supplied wordlist into matchers. Wordlist entries with the same primary
// term as a built-in replace it, so operators can retune severities.
func NewKeywordClassifier(wordlist *config.Wordlist, logger *zap.Logger) *KeywordClassifier {
	normalizer := utils.NewTextNormalizer()

	entries := defaultWordlistEntries()
	if wordlist != nil {
		entries = mergeWordlistEntries(entries, wordlist.Terms)
	}

	c := &KeywordClassifier{
		normalizer: normalizer,
		logger:     logger.Named("keyword_classifier"),
	}

	for _, entry := range entries {
		severity, err := enum.SeverityString(entry.Severity)
		if err != nil || severity == enum.SeverityNone {
			c.logger.Warn("Skipping wordlist entry with invalid severity",
				zap.String("term", entry.Term),
				zap.String("severity", entry.Severity))

			continue
		}

		if !validCategory(entry.Category) {
			c.logger.Warn("Skipping wordlist entry with unknown category",
				zap.String("term", entry.Term),
				zap.String("category", entry.Category))

			continue
		}

		matcher := keywordMatcher{
			term:      entry.Term,
			severity:  severity,
			category:  entry.Category,
			substring: entry.AllowSubstring,
		}

		// Expand whole-word terms with plural and past tense forms so a
		// single base term covers its common inflections.
		terms := append([]string{entry.Term}, entry.RelatedTerms...)
		for _, term := range terms {
			forms := []string{term}
			if !entry.AllowSubstring && !strings.Contains(term, " ") {
				forms = utils.GenerateMorphologicalVariations(term)
			}

			for _, form := range forms {
				variant := canonicalTerm(normalizer, form)
				if variant != "" {
					matcher.variants = append(matcher.variants, variant)
				}
			}
		}

		matcher.variants = utils.RemoveDuplicates(matcher.variants)
		if len(matcher.variants) > 0 {
			c.matchers = append(c.matchers, matcher)
		}
	}

	return c
}

// Classify scans the content for compiled terms and returns the most
// severe hit, or nil when nothing matches.
func (c *KeywordClassifier) Classify(_ context.Context, text string) (*Classification, error) {
	canonical := canonicalTerm(c.normalizer, text)
	if canonical == "" {
		return nil, nil //nolint:nilnil // no finding
	}

	// Space padding turns whole-word checks into plain substring checks.
	padded := " " + canonical + " "

	var best *Classification

	for i := range c.matchers {
		m := &c.matchers[i]

		for _, variant := range m.variants {
			var hit bool
			if m.substring {
				hit = strings.Contains(padded, variant)
			} else {
				hit = strings.Contains(padded, " "+variant+" ")
			}

			if !hit {
				continue
			}

			if best == nil || m.severity > best.Severity {
				best = &Classification{
					Severity:   m.severity,
					Category:   m.category,
					Confidence: 1,
					Evidence:   []string{m.term},
				}
			}

			// Nothing outranks a critical hit, so stop scanning.
			if best.Severity == enum.SeverityCritical {
				return best, nil
			}

			break
		}
	}

	return best, nil
}

// canonicalTerm lowercases, strips diacritics and apostrophes, and
// collapses everything that is not a letter or digit into single spaces,
// so "Don't  tëll" and "dont tell" compare equal.
func canonicalTerm(normalizer *utils.TextNormalizer, s string) string {
	normalized := normalizer.Normalize(s)
	normalized = strings.ReplaceAll(normalized, "'", "")

	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	return strings.Join(words, " ")
}

// mergeWordlistEntries overlays operator entries onto the defaults,
// replacing any default that shares a primary term.
func mergeWordlistEntries(defaults, overrides []config.WordlistEntry) []config.WordlistEntry {
	byTerm := make(map[string]int, len(defaults))
	for i, entry := range defaults {
		byTerm[strings.ToLower(entry.Term)] = i
	}

	merged := make([]config.WordlistEntry, len(defaults))
	copy(merged, defaults)

	for _, entry := range overrides {
		if i, ok := byTerm[strings.ToLower(entry.Term)]; ok {
			merged[i] = entry
		} else {
			merged = append(merged, entry)
		}
	}

	return merged
}

// defaultWordlistEntries is the baseline term list used when no wordlist
// file is deployed. Operators are expected to extend it, not to rely on
// it being complete.
func defaultWordlistEntries() []config.WordlistEntry {
	return []config.WordlistEntry{
		{
			Term:           "kill myself",
			RelatedTerms:   []string{"end my life", "end it all", "take my own life", "better off dead"},
			Meaning:        "First-person suicidal intent",
			Severity:       "critical",
			Category:       CategorySelfHarm,
			AllowSubstring: false,
		},
		{
			Term:           "kms",
			RelatedTerms:   []string{"unalive myself"},
			Meaning:        "Slang and filter-evasion forms of suicidal intent",
			Severity:       "critical",
			Category:       CategorySelfHarm,
			AllowSubstring: false,
		},
		{
			Term:           "suicid",
			RelatedTerms:   []string{"self harm", "self-harm"},
			Meaning:        "Suicide and self-harm references in any inflection",
			Severity:       "sensitive",
			Category:       CategorySelfHarm,
			AllowSubstring: true,
		},
		{
			Term:           "cutting myself",
			RelatedTerms:   []string{"cut myself", "hurt myself", "harming myself"},
			Meaning:        "First-person self-injury",
			Severity:       "critical",
			Category:       CategorySelfHarm,
			AllowSubstring: false,
		},
		{
			Term:           "shoot up",
			RelatedTerms:   []string{"bring a gun", "blow up the school"},
			Meaning:        "Threats of mass violence",
			Severity:       "critical",
			Category:       CategoryViolence,
			AllowSubstring: false,
		},
		{
			Term:           "hurt someone",
			RelatedTerms:   []string{"make them pay", "they will regret"},
			Meaning:        "Diffuse threats of violence toward others",
			Severity:       "sensitive",
			Category:       CategoryViolence,
			AllowSubstring: false,
		},
		{
			Term:           "our secret",
			RelatedTerms:   []string{"dont tell your parents", "dont tell anyone", "keep this between us"},
			Meaning:        "Secrecy pressure typical of grooming",
			Severity:       "critical",
			Category:       CategoryGrooming,
			AllowSubstring: false,
		},
		{
			Term:           "send pics",
			RelatedTerms:   []string{"send photos of yourself", "what are you wearing"},
			Meaning:        "Solicitation of images from a minor",
			Severity:       "critical",
			Category:       CategoryGrooming,
			AllowSubstring: false,
		},
		{
			Term:           "how old are you",
			RelatedTerms:   []string{"are you home alone"},
			Meaning:        "Age and supervision probing",
			Severity:       "sensitive",
			Category:       CategoryGrooming,
			AllowSubstring: false,
		},
		{
			Term:           "hits me",
			RelatedTerms:   []string{"beats me", "touches me", "hurts me at home"},
			Meaning:        "Disclosure of abuse by someone else",
			Severity:       "critical",
			Category:       CategoryAbuse,
			AllowSubstring: false,
		},
		{
			Term:           "afraid to go home",
			RelatedTerms:   []string{"scared to go home", "not safe at home"},
			Meaning:        "Disclosure of an unsafe home",
			Severity:       "sensitive",
			Category:       CategoryAbuse,
			AllowSubstring: false,
		},
	}
}
