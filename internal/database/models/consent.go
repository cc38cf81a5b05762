package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/dbretry"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ConsentModel handles database operations for guardian consent records.
type ConsentModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewConsent creates a new consent model.
func NewConsent(db *bun.DB, logger *zap.Logger) *ConsentModel {
	return &ConsentModel{
		db:     db,
		logger: logger.Named("db_consent"),
	}
}

// GetRecord retrieves a consent record by ID.
func (r *ConsentModel) GetRecord(ctx context.Context, recordID uuid.UUID) (*types.ConsentRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ConsentRecord, error) {
		var record types.ConsentRecord

		err := r.db.NewSelect().
			Model(&record).
			Where("id = ?", recordID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrConsentNotFound
			}

			return nil, fmt.Errorf("failed to get consent record: %w", err)
		}

		return &record, nil
	})
}

// GetRecordForUpdate loads a consent record under FOR UPDATE inside the
// caller's transaction.
func (r *ConsentModel) GetRecordForUpdate(ctx context.Context, tx bun.Tx, recordID uuid.UUID) (*types.ConsentRecord, error) {
	var record types.ConsentRecord

	err := tx.NewSelect().
		Model(&record).
		Where("id = ?", recordID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrConsentNotFound
		}

		return nil, fmt.Errorf("failed to lock consent record: %w", err)
	}

	return &record, nil
}

// GetPendingForUpdate returns the user's pending request locked for update,
// or nil when no pending request exists.
func (r *ConsentModel) GetPendingForUpdate(ctx context.Context, tx bun.Tx, userID uuid.UUID) (*types.ConsentRecord, error) {
	var records []*types.ConsentRecord

	err := tx.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Where("status = ?", enum.ConsentStatusPending).
		For("UPDATE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending consent request: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	return records[0], nil
}

// GetApprovalsForUpdate returns all approved records for a user locked for
// update, newest first. Used when a new approval supersedes old ones and
// when revocation or expiry flips them.
func (r *ConsentModel) GetApprovalsForUpdate(ctx context.Context, tx bun.Tx, userID uuid.UUID) ([]*types.ConsentRecord, error) {
	var records []*types.ConsentRecord

	err := tx.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Where("status = ?", enum.ConsentStatusApproved).
		Order("decided_at DESC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved consent records: %w", err)
	}

	return records, nil
}

// GetLatestApproval returns the user's most recent approved record without
// locking, or nil when none exists. Expiry is the caller's concern: the row
// may carry an expires_at already in the past.
func (r *ConsentModel) GetLatestApproval(ctx context.Context, userID uuid.UUID) (*types.ConsentRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ConsentRecord, error) {
		var records []*types.ConsentRecord

		err := r.db.NewSelect().
			Model(&records).
			Where("user_id = ?", userID).
			Where("status = ?", enum.ConsentStatusApproved).
			Order("decided_at DESC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest approval: %w", err)
		}

		if len(records) == 0 {
			return nil, nil
		}

		return records[0], nil
	})
}

// ListByUser retrieves a user's full consent history, newest first.
func (r *ConsentModel) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.ConsentRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ConsentRecord, error) {
		var records []*types.ConsentRecord

		err := r.db.NewSelect().
			Model(&records).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list consent records: %w", err)
		}

		return records, nil
	})
}

// InsertRecord writes a new consent record inside the caller's transaction.
func (r *ConsentModel) InsertRecord(ctx context.Context, tx bun.Tx, record *types.ConsentRecord) error {
	_, err := tx.NewInsert().
		Model(record).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert consent record: %w", err)
	}

	return nil
}

// UpdateDecision writes the decision fields of a record inside the caller's
// transaction.
func (r *ConsentModel) UpdateDecision(ctx context.Context, tx bun.Tx, record *types.ConsentRecord) error {
	_, err := tx.NewUpdate().
		Model(record).
		Column("status", "decided_at", "expires_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update consent decision: %w", err)
	}

	return nil
}

// UpdateStatus flips a record to a terminal status inside the caller's
// transaction.
func (r *ConsentModel) UpdateStatus(ctx context.Context, tx bun.Tx, recordID uuid.UUID, status enum.ConsentStatus) error {
	_, err := tx.NewUpdate().
		Model((*types.ConsentRecord)(nil)).
		Set("status = ?", status).
		Where("id = ?", recordID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update consent status: %w", err)
	}

	return nil
}

// CountByStatus returns how many consent records currently sit in each
// status. Pending rows past the response window and approved rows past
// their expiry are excluded even when no read has flipped them yet, so the
// counts match what gating would report.
func (r *ConsentModel) CountByStatus(ctx context.Context, now time.Time) (map[enum.ConsentStatus]int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (map[enum.ConsentStatus]int, error) {
		var rows []struct {
			Status enum.ConsentStatus `bun:"status"`
			Count  int                `bun:"count"`
		}

		err := r.db.NewSelect().
			Model((*types.ConsentRecord)(nil)).
			Column("status").
			ColumnExpr("COUNT(*) AS count").
			Where("(status NOT IN (?, ?)) OR (status = ? AND created_at > ?) OR (status = ? AND expires_at > ?)",
				enum.ConsentStatusPending, enum.ConsentStatusApproved,
				enum.ConsentStatusPending, now.Add(-types.ConsentPendingWindow),
				enum.ConsentStatusApproved, now).
			Group("status").
			Scan(ctx, &rows)
		if err != nil {
			return nil, fmt.Errorf("failed to count consent records: %w", err)
		}

		counts := make(map[enum.ConsentStatus]int, len(rows))
		for _, row := range rows {
			counts[row.Status] = row.Count
		}

		return counts, nil
	})
}
