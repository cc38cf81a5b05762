// Package classify decides whether submitted content carries a safety
// signal. Two engines implement the same interface: a deterministic
// keyword matcher that works offline and a Gemini-backed model for
// deployments with an API key. The Screener wraps whichever engine is
// configured and absorbs its failures so publishing never blocks on a
// broken upstream.
package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
)

// Content categories assigned by classifiers.
const (
	CategorySelfHarm = "self_harm"
	CategoryViolence = "violence"
	CategoryGrooming = "grooming"
	CategoryAbuse    = "abuse"
)

var (
	// ErrUnknownEngine is returned when configuration names a classifier
	// engine that does not exist.
	ErrUnknownEngine = errors.New("unknown classifier engine")
	// ErrNoGeminiClient is returned when the gemini engine is selected
	// without an API key configured.
	ErrNoGeminiClient = errors.New("gemini engine selected but no API key configured")
)

// Classification is a positive finding on a piece of content. A nil
// *Classification from a classifier means no finding.
type Classification struct {
	Severity   enum.Severity
	Category   string
	Confidence float64
	Evidence   []string
}

// Classifier evaluates one piece of content. Implementations return nil
// when the content carries no safety signal and an error only when the
// evaluation itself could not complete.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// NewClassifier builds the engine named in configuration.
func NewClassifier(
	cfg *config.CommonConfig, wordlist *config.Wordlist, client *genai.Client, logger *zap.Logger,
) (Classifier, error) {
	switch cfg.Classify.Engine {
	case "gemini":
		if client == nil {
			return nil, ErrNoGeminiClient
		}

		return NewGeminiClassifier(client, cfg, logger), nil
	case "", "keyword":
		return NewKeywordClassifier(wordlist, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Classify.Engine)
	}
}

// validCategory reports whether a category string is one the rest of the
// system understands.
func validCategory(category string) bool {
	switch category {
	case CategorySelfHarm, CategoryViolence, CategoryGrooming, CategoryAbuse:
		return true
	default:
		return false
	}
}
