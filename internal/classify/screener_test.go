package classify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/classify"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
)

var errUpstreamDown = errors.New("upstream unavailable")

// stubClassifier adapts a function to the Classifier interface.
type stubClassifier struct {
	fn func(ctx context.Context, text string) (*classify.Classification, error)
}

func (s stubClassifier) Classify(ctx context.Context, text string) (*classify.Classification, error) {
	return s.fn(ctx, text)
}

// memorySink collects audit entries for assertions.
type memorySink struct {
	mu      sync.Mutex
	entries []*types.AuditEntry
}

func (m *memorySink) Append(_ context.Context, entry *types.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)

	return nil
}

func (m *memorySink) all() []*types.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*types.AuditEntry(nil), m.entries...)
}

func newTestScreener(classifier classify.Classifier, sink *memorySink, timeoutMS int) *classify.Screener {
	cfg := &config.Classify{
		Engine:        "keyword",
		MaxConcurrent: 2,
		Timeout:       timeoutMS,
	}

	return classify.NewScreener(classifier, sink, cfg, zap.NewNop())
}

func TestScreenerPassesFindingsThrough(t *testing.T) {
	t.Parallel()

	finding := &classify.Classification{
		Severity:   enum.SeverityCritical,
		Category:   classify.CategorySelfHarm,
		Confidence: 0.9,
		Evidence:   []string{"kill myself"},
	}
	sink := &memorySink{}
	screener := newTestScreener(stubClassifier{
		fn: func(context.Context, string) (*classify.Classification, error) {
			return finding, nil
		},
	}, sink, 1000)

	result := screener.Screen(t.Context(), uuid.New(), "post:1", "some content")

	assert.Equal(t, finding, result)
	assert.Empty(t, sink.all(), "clean calls should not write audit entries")
}

func TestScreenerNoFinding(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	screener := newTestScreener(stubClassifier{
		fn: func(context.Context, string) (*classify.Classification, error) {
			return nil, nil //nolint:nilnil // no finding
		},
	}, sink, 1000)

	result := screener.Screen(t.Context(), uuid.New(), "post:1", "some content")

	assert.Nil(t, result)
	assert.Empty(t, sink.all())
}

func TestScreenerFailsOpenOnError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sink := &memorySink{}
	screener := newTestScreener(stubClassifier{
		fn: func(context.Context, string) (*classify.Classification, error) {
			return nil, errUpstreamDown
		},
	}, sink, 1000)

	result := screener.Screen(t.Context(), userID, "post:42", "some content")

	assert.Nil(t, result, "upstream failures must not surface to the caller")

	entries := sink.all()
	require.Len(t, entries, 1)
	assert.Equal(t, enum.ReasonCodeClassifierFailure, entries[0].Reason)
	assert.Equal(t, enum.EntityKindUser, entries[0].EntityKind)
	assert.Equal(t, userID.String(), entries[0].EntityID)
	assert.Equal(t, enum.ActorKindSystem, entries[0].ActorKind)
	assert.Contains(t, entries[0].Detail, "post:42")
}

func TestScreenerFailsOpenOnTimeout(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	screener := newTestScreener(stubClassifier{
		fn: func(ctx context.Context, _ string) (*classify.Classification, error) {
			select {
			case <-time.After(10 * time.Second):
				return nil, nil //nolint:nilnil // unreachable in this test
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}, sink, 50)

	start := time.Now()
	result := screener.Screen(t.Context(), uuid.New(), "post:7", "slow content")
	elapsed := time.Since(start)

	assert.Nil(t, result)
	assert.Less(t, elapsed, 5*time.Second, "timeout must bound the call")

	entries := sink.all()
	require.Len(t, entries, 1)
	assert.Equal(t, enum.ReasonCodeClassifierFailure, entries[0].Reason)
}

func TestScreenerFailsOpenOnCancelledContext(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	screener := newTestScreener(stubClassifier{
		fn: func(context.Context, string) (*classify.Classification, error) {
			t.Error("classifier should not run once the context is cancelled")
			return nil, nil //nolint:nilnil // unreachable in this test
		},
	}, sink, 1000)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	result := screener.Screen(ctx, uuid.New(), "post:9", "content")

	assert.Nil(t, result)
	require.Len(t, sink.all(), 1, "the absorbed failure still gets an audit record")
}
