package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"github.com/tdewolff/minify/v2"
	minjson "github.com/tdewolff/minify/v2/json"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/pkg/utils"
	"go.uber.org/zap"
)

// ApplicationJSON is the MIME type used for model payloads and responses.
const ApplicationJSON = "application/json"

// ErrModelResponse is returned when the model response cannot be parsed.
var ErrModelResponse = errors.New("unexpected response format from model")

const geminiSystemPrompt = `You are a trust and safety classifier for a social platform whose members are teenagers.

You receive one piece of member-submitted content. Decide whether it signals a safety risk to the author or to others.

Severities:
- "none": ordinary content, including dark humor, song lyrics, fiction and gaming banter with no real-world signal.
- "sensitive": content that warrants passive review, such as references to self-harm or abuse without first-person intent.
- "critical": content indicating acute danger, such as first-person suicidal intent, credible threats of violence, grooming behavior, or disclosure of ongoing abuse.

Categories:
- "self_harm": suicide or self-injury.
- "violence": threats or plans to harm others.
- "grooming": adults soliciting images, secrecy or meetings from minors.
- "abuse": disclosure of physical, sexual or domestic abuse.

Key rules:
1. Judge intent, not vocabulary. "This boss fight makes me want to die" is none.
2. First-person statements of intent or ongoing harm are critical even when hedged or misspelled.
3. Quote evidence EXACTLY as it appears in the content. Never paraphrase or invent evidence.
4. Set confidence to your certainty in the finding, between 0 and 1.
5. When severity is "none", return an empty evidence array and confidence 1.`

const geminiRequestPrompt = `Classify the following content:`

// geminiResponse is the structured output requested from the model.
type geminiResponse struct {
	Severity   string   `json:"severity"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// geminiRequest wraps the content so it reaches the model as data rather
// than as instructions.
type geminiRequest struct {
	Content string `json:"content"`
}

// GeminiClassifier evaluates content with a Gemini model constrained to a
// JSON response schema. Findings whose quoted evidence cannot be located
// in the original content are dropped as hallucinations.
type GeminiClassifier struct {
	model      *genai.GenerativeModel
	minify     *minify.M
	normalizer *utils.TextNormalizer
	floor      float64
	logger     *zap.Logger
}

// NewGeminiClassifier configures a Gemini model for content classification.
func NewGeminiClassifier(client *genai.Client, cfg *config.CommonConfig, logger *zap.Logger) *GeminiClassifier {
	model := client.GenerativeModel(cfg.GeminiAI.Model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(geminiSystemPrompt))

	// Constrain the response to a structured JSON schema
	model.ResponseMIMEType = ApplicationJSON
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"severity": {
				Type:        genai.TypeString,
				Enum:        []string{"none", "sensitive", "critical"},
				Description: "Overall severity of the safety signal",
			},
			"category": {
				Type:        genai.TypeString,
				Enum:        []string{CategorySelfHarm, CategoryViolence, CategoryGrooming, CategoryAbuse},
				Description: "Category of the strongest signal found",
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "Certainty in the finding between 0 and 1",
			},
			"evidence": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Exact quotes from the content supporting the finding",
			},
		},
		Required: []string{"severity", "category", "confidence"},
	}

	// Low temperature keeps severity decisions stable across retries
	model.SetTemperature(0.1)
	model.SetTopP(0.1)
	model.SetMaxOutputTokens(512)

	m := minify.New()
	m.AddFunc(ApplicationJSON, minjson.Minify)

	return &GeminiClassifier{
		model:      model,
		minify:     m,
		normalizer: utils.NewTextNormalizer(),
		floor:      cfg.Classify.ConfidenceFloor,
		logger:     logger.Named("gemini_classifier"),
	}
}

// Classify sends the content to the model and interprets its finding.
func (g *GeminiClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	cleaned := utils.CompressWhitespacePreserveNewlines(text)
	if cleaned == "" {
		return nil, nil //nolint:nilnil // no finding
	}

	payload, err := sonic.Marshal(geminiRequest{Content: cleaned})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	minified, err := g.minify.Bytes(ApplicationJSON, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to minify request payload: %w", err)
	}

	parsed, err := utils.WithRetry(ctx, func() (*geminiResponse, error) {
		resp, err := g.model.GenerateContent(ctx,
			genai.Text(fmt.Sprintf("%s\n\n%s", geminiRequestPrompt, minified)))
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		// An empty candidate set means the safety filters ate the
		// response; retrying will not help.
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
			len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, backoff.Permanent(utils.ErrContentBlocked)
		}

		responseText, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
		if !ok {
			return nil, fmt.Errorf("%w: non-text part", ErrModelResponse)
		}

		var result geminiResponse
		if err := sonic.Unmarshal([]byte(responseText), &result); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelResponse, err)
		}

		return &result, nil
	}, utils.GetAIRetryOptions())
	if err != nil {
		return nil, err
	}

	return g.interpret(parsed, cleaned), nil
}

// interpret turns a raw model response into a finding, dropping results
// that fail severity parsing, the confidence floor or evidence checks.
func (g *GeminiClassifier) interpret(parsed *geminiResponse, original string) *Classification {
	if parsed.Severity == "none" {
		return nil
	}

	severity, err := enum.SeverityString(parsed.Severity)
	if err != nil || severity == enum.SeverityNone {
		g.logger.Warn("Model returned unknown severity",
			zap.String("severity", parsed.Severity))

		return nil
	}

	if parsed.Confidence < g.floor {
		g.logger.Debug("Dropping finding below confidence floor",
			zap.Float64("confidence", parsed.Confidence),
			zap.Float64("floor", g.floor))

		return nil
	}

	if !validCategory(parsed.Category) {
		g.logger.Warn("Model returned unknown category",
			zap.String("category", parsed.Category))

		return nil
	}

	// Require the quoted evidence to actually appear in the content;
	// findings built on invented quotes are worthless.
	if len(parsed.Evidence) > 0 && !g.normalizer.ValidateWords(parsed.Evidence, original) {
		g.logger.Warn("Dropping finding whose evidence is not present in content",
			zap.Strings("evidence", parsed.Evidence))

		return nil
	}

	return &Classification{
		Severity:   severity,
		Category:   parsed.Category,
		Confidence: parsed.Confidence,
		Evidence:   parsed.Evidence,
	}
}
