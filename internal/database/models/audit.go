package models

import (
	"context"
	"fmt"

	"github.com/trygglabs/trygg/internal/database/dbretry"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AuditModel handles database operations for the append-only audit log.
type AuditModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAudit creates a new audit model.
func NewAudit(db *bun.DB, logger *zap.Logger) *AuditModel {
	return &AuditModel{
		db:     db,
		logger: logger.Named("db_audit"),
	}
}

// AppendTx writes an entry inside the caller's transaction. Every state
// transition appends its entry this way so the caller never observes
// success before the entry is durable.
func (r *AuditModel) AppendTx(ctx context.Context, tx bun.Tx, entry *types.AuditEntry) error {
	_, err := tx.NewInsert().
		Model(entry).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// Append writes an entry outside any transaction. Used for events with no
// owning transition, such as a classifier outage being absorbed.
func (r *AuditModel) Append(ctx context.Context, entry *types.AuditEntry) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(entry).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}

		return nil
	})
}

// GetEntries retrieves audit entries matching the filter, newest first,
// with cursor pagination.
func (r *AuditModel) GetEntries(
	ctx context.Context, filter types.AuditFilter, cursor *types.AuditCursor, limit int,
) ([]*types.AuditEntry, *types.AuditCursor, error) {
	var entries []*types.AuditEntry
	var nextCursor *types.AuditCursor

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		query := r.db.NewSelect().Model(&entries)

		if filter.EntityKind != nil {
			query = query.Where("entity_kind = ?", *filter.EntityKind)
		}
		if filter.EntityID != "" {
			query = query.Where("entity_id = ?", filter.EntityID)
		}
		if filter.ActorID != "" {
			query = query.Where("actor_id = ?", filter.ActorID)
		}
		if filter.Reason != nil {
			query = query.Where("reason = ?", *filter.Reason)
		}
		if !filter.StartTime.IsZero() && !filter.EndTime.IsZero() {
			query = query.Where("created_at BETWEEN ? AND ?", filter.StartTime, filter.EndTime)
		}

		if cursor != nil {
			query = query.Where("(created_at, id) <= (?, ?)", cursor.Timestamp, cursor.ID)
		}

		// Order by timestamp and id for stable pagination
		query = query.Order("created_at DESC", "id DESC").
			Limit(limit + 1) // Get one extra to determine if there are more results

		if err := query.Scan(ctx); err != nil {
			return fmt.Errorf("failed to get audit entries: %w", err)
		}

		if len(entries) > limit {
			// Use the extra item as the next cursor
			extraItem := entries[limit]
			nextCursor = &types.AuditCursor{
				Timestamp: extraItem.CreatedAt,
				ID:        extraItem.ID,
			}
			entries = entries[:limit] // Remove the extra item
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return entries, nextCursor, nil
}
