package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		constraints := []struct {
			table     string
			column    string
			refTable  string
			refColumn string
			onDelete  string
		}{
			{"consent_records", "user_id", "users", "id", "CASCADE"},
			{"incidents", "user_id", "users", "id", "CASCADE"},
			{"safety_states", "user_id", "users", "id", "CASCADE"},
			{"safety_states", "trigger_incident_id", "incidents", "id", "SET NULL"},
			{"content_restrictions", "user_id", "users", "id", "CASCADE"},
			{"content_restrictions", "incident_id", "incidents", "id", "CASCADE"},
			{"alerts", "user_id", "users", "id", "CASCADE"},
			{"alerts", "incident_id", "incidents", "id", "CASCADE"},
		}

		for _, constraint := range constraints {
			constraintName := fmt.Sprintf("%s_%s_to_%s_fkey",
				constraint.table, constraint.column, constraint.refTable)

			// Add constraint as NOT VALID first so existing rows are not
			// scanned under an exclusive lock, then validate separately.
			_, err := db.NewRaw(fmt.Sprintf(`
				ALTER TABLE %s
				ADD CONSTRAINT %s
				FOREIGN KEY (%s) REFERENCES %s (%s)
				ON DELETE %s
				NOT VALID
			`, constraint.table, constraintName, constraint.column,
				constraint.refTable, constraint.refColumn, constraint.onDelete)).Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to add foreign key constraint %s: %w", constraintName, err)
			}

			_, err = db.NewRaw(fmt.Sprintf(`
				ALTER TABLE %s
				VALIDATE CONSTRAINT %s
			`, constraint.table, constraintName)).Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to validate constraint %s: %w", constraintName, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		constraints := []struct {
			table    string
			column   string
			refTable string
		}{
			{"alerts", "incident_id", "incidents"},
			{"alerts", "user_id", "users"},
			{"content_restrictions", "incident_id", "incidents"},
			{"content_restrictions", "user_id", "users"},
			{"safety_states", "trigger_incident_id", "incidents"},
			{"safety_states", "user_id", "users"},
			{"incidents", "user_id", "users"},
			{"consent_records", "user_id", "users"},
		}

		for _, constraint := range constraints {
			constraintName := fmt.Sprintf("%s_%s_to_%s_fkey",
				constraint.table, constraint.column, constraint.refTable)

			_, err := db.NewRaw(fmt.Sprintf(
				"ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s",
				constraint.table, constraintName,
			)).Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop foreign key constraint %s: %w", constraintName, err)
			}
		}

		return nil
	})
}
