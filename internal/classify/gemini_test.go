package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/pkg/utils"
	"go.uber.org/zap"
)

func newInterpretFixture(floor float64) *GeminiClassifier {
	return &GeminiClassifier{
		normalizer: utils.NewTextNormalizer(),
		floor:      floor,
		logger:     zap.NewNop(),
	}
}

func TestGeminiInterpret(t *testing.T) {
	t.Parallel()

	original := "i cant do this anymore, tonight i will kill myself"

	tests := []struct {
		name     string
		response *geminiResponse
		floor    float64
		want     *Classification
	}{
		{
			name: "none severity yields no finding",
			response: &geminiResponse{
				Severity:   "none",
				Category:   CategorySelfHarm,
				Confidence: 1,
			},
			floor: 0.4,
			want:  nil,
		},
		{
			name: "unknown severity is dropped",
			response: &geminiResponse{
				Severity:   "catastrophic",
				Category:   CategorySelfHarm,
				Confidence: 0.9,
			},
			floor: 0.4,
			want:  nil,
		},
		{
			name: "below confidence floor is dropped",
			response: &geminiResponse{
				Severity:   "critical",
				Category:   CategorySelfHarm,
				Confidence: 0.2,
				Evidence:   []string{"kill myself"},
			},
			floor: 0.4,
			want:  nil,
		},
		{
			name: "unknown category is dropped",
			response: &geminiResponse{
				Severity:   "critical",
				Category:   "drama",
				Confidence: 0.9,
				Evidence:   []string{"kill myself"},
			},
			floor: 0.4,
			want:  nil,
		},
		{
			name: "invented evidence is dropped",
			response: &geminiResponse{
				Severity:   "critical",
				Category:   CategorySelfHarm,
				Confidence: 0.95,
				Evidence:   []string{"jumping off the bridge at dawn"},
			},
			floor: 0.4,
			want:  nil,
		},
		{
			name: "verified evidence passes through",
			response: &geminiResponse{
				Severity:   "critical",
				Category:   CategorySelfHarm,
				Confidence: 0.95,
				Evidence:   []string{"tonight i will kill myself"},
			},
			floor: 0.4,
			want: &Classification{
				Severity:   enum.SeverityCritical,
				Category:   CategorySelfHarm,
				Confidence: 0.95,
				Evidence:   []string{"tonight i will kill myself"},
			},
		},
		{
			name: "finding without evidence is allowed",
			response: &geminiResponse{
				Severity:   "sensitive",
				Category:   CategoryAbuse,
				Confidence: 0.6,
			},
			floor: 0.4,
			want: &Classification{
				Severity:   enum.SeveritySensitive,
				Category:   CategoryAbuse,
				Confidence: 0.6,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newInterpretFixture(tt.floor)
			got := g.interpret(tt.response, original)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.want.Severity, got.Severity)
			assert.Equal(t, tt.want.Category, got.Category)
			assert.InDelta(t, tt.want.Confidence, got.Confidence, 0.001)
			assert.Equal(t, tt.want.Evidence, got.Evidence)
		})
	}
}
