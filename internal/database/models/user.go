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
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// UserModel handles database operations for user accounts.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a new user model.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// CreateUser inserts a new user account. Returns types.ErrUserExists when
// the external reference is already registered.
func (r *UserModel) CreateUser(ctx context.Context, user *types.User) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewInsert().
			Model(user).
			On("CONFLICT (external_ref) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return types.ErrUserExists
		}

		return nil
	})
}

// GetUser retrieves a user account by ID.
func (r *UserModel) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		var user types.User

		err := r.db.NewSelect().
			Model(&user).
			Where("id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrUserNotFound
			}

			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		return &user, nil
	})
}

// GetUserByExternalRef retrieves a user account by its platform reference.
func (r *UserModel) GetUserByExternalRef(ctx context.Context, externalRef string) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		var user types.User

		err := r.db.NewSelect().
			Model(&user).
			Where("external_ref = ?", externalRef).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrUserNotFound
			}

			return nil, fmt.Errorf("failed to get user by external ref: %w", err)
		}

		return &user, nil
	})
}

// LockUser loads a user row under FOR UPDATE so the calling transaction
// serializes against every other transition for the same user.
func (r *UserModel) LockUser(ctx context.Context, tx bun.Tx, userID uuid.UUID) (*types.User, error) {
	var user types.User

	err := tx.NewSelect().
		Model(&user).
		Where("id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	return &user, nil
}

// UpdateBirthDate sets the verified birth date on an account. The legacy
// category stays on the row but stops mattering once a birth date exists.
func (r *UserModel) UpdateBirthDate(ctx context.Context, tx bun.Tx, userID uuid.UUID, birthDate time.Time) error {
	_, err := tx.NewUpdate().
		Model((*types.User)(nil)).
		Set("birth_date = ?", birthDate).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update birth date: %w", err)
	}

	return nil
}

// GetUsersPage retrieves a page of users ordered by ID for export scans.
// Pass uuid.Nil as the cursor for the first page.
func (r *UserModel) GetUsersPage(ctx context.Context, cursor uuid.UUID, limit int) ([]*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.User, error) {
		var users []*types.User

		query := r.db.NewSelect().
			Model(&users).
			Order("id ASC").
			Limit(limit)

		if cursor != uuid.Nil {
			query = query.Where("id > ?", cursor)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get users page: %w", err)
		}

		return users, nil
	})
}
