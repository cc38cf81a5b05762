package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// AuditSink records classifier failures that have no owning transaction.
// *models.AuditModel satisfies it.
type AuditSink interface {
	Append(ctx context.Context, entry *types.AuditEntry) error
}

// Screener wraps a classifier with a concurrency cap and a per-call
// timeout, and fails open: when the classifier errors or times out the
// content publishes unclassified, with a warning log and an audit entry
// as the record of the gap. Screen never retries and never surfaces
// upstream failures to the caller.
type Screener struct {
	classifier Classifier
	audit      AuditSink
	sem        *semaphore.Weighted
	timeout    time.Duration
	logger     *zap.Logger
}

// NewScreener builds a screener around the given classifier.
func NewScreener(classifier Classifier, audit AuditSink, cfg *config.Classify, logger *zap.Logger) *Screener {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Screener{
		classifier: classifier,
		audit:      audit,
		sem:        semaphore.NewWeighted(maxConcurrent),
		timeout:    timeout,
		logger:     logger.Named("screener"),
	}
}

// Screen classifies one piece of content on behalf of a user. A nil
// result means either no finding or an absorbed classifier failure; the
// two are indistinguishable to the caller on purpose.
func (s *Screener) Screen(ctx context.Context, userID uuid.UUID, contentRef, text string) *Classification {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.failOpen(ctx, userID, contentRef, err)
		return nil
	}
	defer s.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.classifier.Classify(callCtx, text)
	if err != nil {
		s.failOpen(ctx, userID, contentRef, err)
		return nil
	}

	return result
}

// failOpen records that content published without classification. The
// audit write uses a detached context so the record lands even when the
// originating request has already been cancelled.
func (s *Screener) failOpen(ctx context.Context, userID uuid.UUID, contentRef string, cause error) {
	s.logger.Warn("Publishing content unclassified after classifier failure",
		zap.String("userID", userID.String()),
		zap.String("contentRef", contentRef),
		zap.Error(cause))

	entry := &types.AuditEntry{
		EntityKind: enum.EntityKindUser,
		EntityID:   userID.String(),
		ActorKind:  enum.ActorKindSystem,
		Reason:     enum.ReasonCodeClassifierFailure,
		Detail:     fmt.Sprintf("content %s published unclassified: %v", contentRef, cause),
		CreatedAt:  time.Now().UTC(),
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.audit.Append(auditCtx, entry); err != nil {
		s.logger.Error("Failed to record classifier failure in audit log", zap.Error(err))
	}
}
