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

// UserService handles account registration and age input corrections.
// Tiers are derived, never stored, so the only writes here are to the age
// input itself; everything downstream recomputes on read.
type UserService struct {
	db     *bun.DB
	model  *models.UserModel
	audit  *models.AuditModel
	logger *zap.Logger
}

// NewUser creates a new user service.
func NewUser(db *bun.DB, model *models.UserModel, audit *models.AuditModel, logger *zap.Logger) *UserService {
	return &UserService{
		db:     db,
		model:  model,
		audit:  audit,
		logger: logger.Named("user_service"),
	}
}

// RegisterParams contains the inputs for registering an account. Exactly
// one age input is consulted: a birth date when present, otherwise the
// legacy category.
type RegisterParams struct {
	ExternalRef    string
	BirthDate      *time.Time
	LegacyCategory string
}

// Register creates an account and returns it with its derived tier. The
// age input is validated up front so a bad birth date fails as a
// validation error rather than landing an account nobody can tier. An
// under-13 birth date is accepted and derives Ineligible; eligibility is a
// band, not a gate on registration.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (*types.User, enum.Tier, error) {
	if params.ExternalRef == "" {
		return nil, enum.TierIneligible, types.ErrMissingExternalRef
	}

	now := time.Now().UTC()
	user := &types.User{
		ID:          uuid.New(),
		ExternalRef: params.ExternalRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var (
		userTier enum.Tier
		err      error
	)

	switch {
	case params.BirthDate != nil && !params.BirthDate.IsZero():
		birth := params.BirthDate.UTC()
		user.BirthDate = &birth

		userTier, err = tier.Resolve(birth, now)
	case params.LegacyCategory != "":
		user.LegacyCategory = params.LegacyCategory

		userTier, err = tier.ParseLegacyCategory(params.LegacyCategory)
	default:
		return nil, enum.TierIneligible, types.ErrNoAgeInput
	}

	if err != nil {
		return nil, enum.TierIneligible, err
	}

	if err := s.model.CreateUser(ctx, user); err != nil {
		return nil, enum.TierIneligible, err
	}

	s.logger.Info("Registered user",
		zap.String("userID", user.ID.String()),
		zap.String("externalRef", user.ExternalRef),
		zap.String("tier", userTier.String()))

	return user, userTier, nil
}

// Get retrieves an account together with its tier as of now.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID, now time.Time) (*types.User, enum.Tier, error) {
	user, err := s.model.GetUser(ctx, userID)
	if err != nil {
		return nil, enum.TierIneligible, err
	}

	userTier, err := tier.ResolveUser(user, now)
	if err != nil {
		return nil, enum.TierIneligible, err
	}

	return user, userTier, nil
}

// CorrectBirthDate replaces the birth date on file and returns the account
// with its recomputed tier. The new date is validated before any lock is
// taken. The tier change lands in the audit log with the band the account
// left and the band it entered; downstream gating picks the new tier up on
// its next read, since nothing stores it.
func (s *UserService) CorrectBirthDate(
	ctx context.Context, userID uuid.UUID, birthDate time.Time,
) (*types.User, enum.Tier, error) {
	now := time.Now().UTC()

	newTier, err := tier.Resolve(birthDate, now)
	if err != nil {
		return nil, enum.TierIneligible, err
	}

	var updated *types.User

	err = dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		user, err := s.model.LockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		// The previous band may be unknowable when the stored input was
		// never valid; the audit entry then records only the destination.
		fromState := ""
		if fromTier, err := tier.ResolveUser(user, now); err == nil {
			fromState = fromTier.String()
		}

		birth := birthDate.UTC()
		if err := s.model.UpdateBirthDate(ctx, tx, userID, birth); err != nil {
			return err
		}

		entry := &types.AuditEntry{
			EntityKind: enum.EntityKindUser,
			EntityID:   userID.String(),
			FromState:  fromState,
			ToState:    newTier.String(),
			ActorKind:  enum.ActorKindSystem,
			Reason:     enum.ReasonCodeBirthDateCorrected,
			Detail:     fmt.Sprintf("birth date set to %s", birth.Format("2006-01-02")),
			CreatedAt:  now,
		}
		if err := s.audit.AppendTx(ctx, tx, entry); err != nil {
			return err
		}

		user.BirthDate = &birth
		user.UpdatedAt = now
		updated = user

		return nil
	})
	if err != nil {
		return nil, enum.TierIneligible, err
	}

	s.logger.Info("Corrected birth date",
		zap.String("userID", userID.String()),
		zap.String("tier", newTier.String()))

	return updated, newTier, nil
}
