package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/dbretry"
	"github.com/trygglabs/trygg/internal/database/models"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/tier"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ConsentService handles the guardian consent lifecycle. Every mutation
// runs in one transaction that locks the user row first, so consent
// decisions serialize against each other and against gating reads that
// need to flip expired rows.
type ConsentService struct {
	db     *bun.DB
	users  *models.UserModel
	model  *models.ConsentModel
	audit  *models.AuditModel
	logger *zap.Logger
}

// NewConsent creates a new consent service.
func NewConsent(
	db *bun.DB,
	users *models.UserModel,
	model *models.ConsentModel,
	audit *models.AuditModel,
	logger *zap.Logger,
) *ConsentService {
	return &ConsentService{
		db:     db,
		users:  users,
		model:  model,
		audit:  audit,
		logger: logger.Named("consent_service"),
	}
}

// Request opens a guardian consent request for a minor. Fails with
// types.ErrDuplicateActiveRequest while a pending request is still inside
// its response window; a pending request past the window is flipped to
// Expired and superseded in the same transaction.
func (s *ConsentService) Request(
	ctx context.Context, userID uuid.UUID, guardianContact string, method enum.ConsentMethod,
) (*types.ConsentRecord, error) {
	if guardianContact == "" {
		return nil, types.ErrMissingGuardianContact
	}

	now := time.Now().UTC()
	record := &types.ConsentRecord{
		ID:              uuid.New(),
		UserID:          userID,
		GuardianContact: guardianContact,
		Method:          method,
		Status:          enum.ConsentStatusPending,
		CreatedAt:       now,
	}

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		user, err := s.users.LockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		userTier, err := tier.ResolveUser(user, now)
		if err != nil {
			return err
		}
		if !userTier.RequiresConsent() {
			return types.ErrConsentNotRequired
		}

		pending, err := s.model.GetPendingForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		if pending != nil {
			if !pending.PendingWindowClosed(now) {
				return types.ErrDuplicateActiveRequest
			}

			// The guardian never answered; retire the stale request so
			// the new one can take its place.
			if err := s.model.UpdateStatus(ctx, tx, pending.ID, enum.ConsentStatusExpired); err != nil {
				return err
			}

			expireEntry := &types.AuditEntry{
				EntityKind: enum.EntityKindConsent,
				EntityID:   pending.ID.String(),
				FromState:  enum.ConsentStatusPending.String(),
				ToState:    enum.ConsentStatusExpired.String(),
				ActorKind:  enum.ActorKindSystem,
				Reason:     enum.ReasonCodeConsentExpired,
				Detail:     "guardian response window lapsed",
				CreatedAt:  now,
			}
			if err := s.audit.AppendTx(ctx, tx, expireEntry); err != nil {
				return err
			}
		}

		if err := s.model.InsertRecord(ctx, tx, record); err != nil {
			return err
		}

		requestEntry := &types.AuditEntry{
			EntityKind: enum.EntityKindConsent,
			EntityID:   record.ID.String(),
			ToState:    enum.ConsentStatusPending.String(),
			ActorKind:  enum.ActorKindSystem,
			Reason:     enum.ReasonCodeConsentRequested,
			Detail:     fmt.Sprintf("method %s for user %s", method, userID),
			CreatedAt:  now,
		}

		return s.audit.AppendTx(ctx, tx, requestEntry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Opened consent request",
		zap.String("userID", userID.String()),
		zap.String("consentID", record.ID.String()),
		zap.String("method", method.String()))

	return record, nil
}

// Decide records the guardian's answer on a pending request. Approval
// stamps a 365-day validity and supersedes any older approval; the commit
// itself is what flips gating, so a reader can never observe the decision
// without its audit entry. A request past its response window cannot be
// decided and flips to Expired instead.
func (s *ConsentService) Decide(
	ctx context.Context, recordID uuid.UUID, approve bool, actorID string,
) (*types.ConsentRecord, error) {
	now := time.Now().UTC()

	var decided *types.ConsentRecord

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		// Find the owning user before taking locks so every consent
		// transaction acquires user first, then records.
		peek, err := s.model.GetRecord(ctx, recordID)
		if err != nil {
			return err
		}

		if _, err := s.users.LockUser(ctx, tx, peek.UserID); err != nil {
			return err
		}

		record, err := s.model.GetRecordForUpdate(ctx, tx, recordID)
		if err != nil {
			return err
		}

		if record.Status != enum.ConsentStatusPending {
			return types.ErrAlreadyDecided
		}

		if record.PendingWindowClosed(now) {
			if err := s.model.UpdateStatus(ctx, tx, record.ID, enum.ConsentStatusExpired); err != nil {
				return err
			}

			expireEntry := &types.AuditEntry{
				EntityKind: enum.EntityKindConsent,
				EntityID:   record.ID.String(),
				FromState:  enum.ConsentStatusPending.String(),
				ToState:    enum.ConsentStatusExpired.String(),
				ActorKind:  enum.ActorKindSystem,
				Reason:     enum.ReasonCodeConsentExpired,
				Detail:     "guardian response window lapsed",
				CreatedAt:  now,
			}
			if err := s.audit.AppendTx(ctx, tx, expireEntry); err != nil {
				return err
			}

			return types.ErrConsentWindowClosed
		}

		var reason enum.ReasonCode

		if approve {
			expiresAt := now.Add(types.ConsentValidity)
			record.Status = enum.ConsentStatusApproved
			record.DecidedAt = &now
			record.ExpiresAt = &expiresAt
			reason = enum.ReasonCodeConsentApproved

			// A fresh approval supersedes older ones so at most one
			// approval gates the user at a time.
			older, err := s.model.GetApprovalsForUpdate(ctx, tx, record.UserID)
			if err != nil {
				return err
			}

			for _, old := range older {
				if err := s.model.UpdateStatus(ctx, tx, old.ID, enum.ConsentStatusExpired); err != nil {
					return err
				}

				supersedeEntry := &types.AuditEntry{
					EntityKind: enum.EntityKindConsent,
					EntityID:   old.ID.String(),
					FromState:  enum.ConsentStatusApproved.String(),
					ToState:    enum.ConsentStatusExpired.String(),
					ActorKind:  enum.ActorKindSystem,
					Reason:     enum.ReasonCodeConsentExpired,
					Detail:     fmt.Sprintf("superseded by approval %s", record.ID),
					CreatedAt:  now,
				}
				if err := s.audit.AppendTx(ctx, tx, supersedeEntry); err != nil {
					return err
				}
			}
		} else {
			record.Status = enum.ConsentStatusDenied
			record.DecidedAt = &now
			reason = enum.ReasonCodeConsentDenied
		}

		if err := s.model.UpdateDecision(ctx, tx, record); err != nil {
			return err
		}

		decisionEntry := &types.AuditEntry{
			EntityKind: enum.EntityKindConsent,
			EntityID:   record.ID.String(),
			FromState:  enum.ConsentStatusPending.String(),
			ToState:    record.Status.String(),
			ActorKind:  enum.ActorKindGuardian,
			ActorID:    actorID,
			Reason:     reason,
			CreatedAt:  now,
		}
		if err := s.audit.AppendTx(ctx, tx, decisionEntry); err != nil {
			return err
		}

		decided = record

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recorded consent decision",
		zap.String("consentID", decided.ID.String()),
		zap.String("userID", decided.UserID.String()),
		zap.Bool("approved", approve))

	return decided, nil
}

// Revoke withdraws any standing approval for the user, effective
// immediately. Calling it with nothing to revoke is a no-op, not an error.
func (s *ConsentService) Revoke(ctx context.Context, userID uuid.UUID, actorID string) error {
	now := time.Now().UTC()

	var revoked int

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.users.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		approvals, err := s.model.GetApprovalsForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		for _, approval := range approvals {
			if err := s.model.UpdateStatus(ctx, tx, approval.ID, enum.ConsentStatusRevoked); err != nil {
				return err
			}

			entry := &types.AuditEntry{
				EntityKind: enum.EntityKindConsent,
				EntityID:   approval.ID.String(),
				FromState:  enum.ConsentStatusApproved.String(),
				ToState:    enum.ConsentStatusRevoked.String(),
				ActorKind:  enum.ActorKindGuardian,
				ActorID:    actorID,
				Reason:     enum.ReasonCodeConsentRevoked,
				CreatedAt:  now,
			}
			if err := s.audit.AppendTx(ctx, tx, entry); err != nil {
				return err
			}
		}

		revoked = len(approvals)

		return nil
	})
	if err != nil {
		return err
	}

	if revoked > 0 {
		s.logger.Info("Revoked guardian consent",
			zap.String("userID", userID.String()),
			zap.Int("records", revoked))
	}

	return nil
}

// IsGated reports whether the user is blocked from gated features: the
// tier requires consent and no approval is currently valid. Observing an
// approval past its expiry flips the row to Expired on the spot, so the
// ledger converges without a sweeper.
func (s *ConsentService) IsGated(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}

	userTier, err := tier.ResolveUser(user, now)
	if err != nil {
		return false, err
	}
	if !userTier.RequiresConsent() {
		return false, nil
	}

	latest, err := s.model.GetLatestApproval(ctx, userID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	if latest.ApprovedActive(now) {
		return false, nil
	}

	// The approval on file has lapsed; retire it under the user lock and
	// recompute, since a newer approval may have landed in the meantime.
	gated := true

	err = dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.users.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		approvals, err := s.model.GetApprovalsForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		gated = true

		for _, approval := range approvals {
			if approval.ApprovedActive(now) {
				gated = false
				continue
			}

			if err := s.model.UpdateStatus(ctx, tx, approval.ID, enum.ConsentStatusExpired); err != nil {
				return err
			}

			entry := &types.AuditEntry{
				EntityKind: enum.EntityKindConsent,
				EntityID:   approval.ID.String(),
				FromState:  enum.ConsentStatusApproved.String(),
				ToState:    enum.ConsentStatusExpired.String(),
				ActorKind:  enum.ActorKindSystem,
				Reason:     enum.ReasonCodeConsentExpired,
				Detail:     "validity window lapsed",
				CreatedAt:  now,
			}
			if err := s.audit.AppendTx(ctx, tx, entry); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return gated, nil
}
