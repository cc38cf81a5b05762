package migrations

import (
	"context"
	"fmt"

	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.User)(nil),
			(*types.ConsentRecord)(nil),
			(*types.Incident)(nil),
			(*types.SafetyState)(nil),
			(*types.ContentRestriction)(nil),
			(*types.Alert)(nil),
			(*types.AuditEntry)(nil),
			(*types.HourlyStats)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		// Down migration - drop all tables in reverse dependency order
		models := []any{
			(*types.HourlyStats)(nil),
			(*types.AuditEntry)(nil),
			(*types.Alert)(nil),
			(*types.ContentRestriction)(nil),
			(*types.SafetyState)(nil),
			(*types.Incident)(nil),
			(*types.ConsentRecord)(nil),
			(*types.User)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
