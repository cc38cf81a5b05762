package migrations

import (
	"context"
	"fmt"

	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			-- User indexes
			CREATE INDEX IF NOT EXISTS idx_users_legacy_category
			ON users (legacy_category)
			WHERE birth_date IS NULL;

			-- Consent record indexes
			CREATE UNIQUE INDEX IF NOT EXISTS idx_consent_records_one_pending
			ON consent_records (user_id)
			WHERE status = ?;

			CREATE INDEX IF NOT EXISTS idx_consent_records_user_status
			ON consent_records (user_id, status);

			CREATE INDEX IF NOT EXISTS idx_consent_records_user_created
			ON consent_records (user_id, created_at DESC);

			-- Incident indexes
			CREATE INDEX IF NOT EXISTS idx_incidents_user_created
			ON incidents (user_id, created_at DESC);

			CREATE INDEX IF NOT EXISTS idx_incidents_open
			ON incidents (user_id)
			WHERE outcome IS NULL;

			-- Safety state indexes
			CREATE INDEX IF NOT EXISTS idx_safety_states_status
			ON safety_states (status);

			CREATE INDEX IF NOT EXISTS idx_safety_states_watchlist
			ON safety_states (watchlist_until ASC)
			WHERE watchlist_until IS NOT NULL;

			-- Content restriction indexes
			CREATE INDEX IF NOT EXISTS idx_content_restrictions_user
			ON content_restrictions (user_id);

			CREATE INDEX IF NOT EXISTS idx_content_restrictions_incident
			ON content_restrictions (incident_id);

			-- Alert indexes
			CREATE INDEX IF NOT EXISTS idx_alerts_deadline_open
			ON alerts (deadline_at ASC)
			WHERE status = ?;

			CREATE INDEX IF NOT EXISTS idx_alerts_incident
			ON alerts (incident_id);

			CREATE INDEX IF NOT EXISTS idx_alerts_user_created
			ON alerts (user_id, created_at DESC);

			-- Audit entry indexes
			CREATE INDEX IF NOT EXISTS idx_audit_entries_time
			ON audit_entries (created_at DESC, id DESC);

			CREATE INDEX IF NOT EXISTS idx_audit_entries_entity_time
			ON audit_entries (entity_kind, entity_id, created_at DESC, id DESC);

			CREATE INDEX IF NOT EXISTS idx_audit_entries_actor_time
			ON audit_entries (actor_id, created_at DESC, id DESC)
			WHERE actor_id <> '';

			-- Statistics indexes
			CREATE INDEX IF NOT EXISTS idx_hourly_stats_timestamp
			ON hourly_stats (timestamp DESC);
		`, enum.ConsentStatusPending, enum.AlertStatusPending).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			-- User indexes
			DROP INDEX IF EXISTS idx_users_legacy_category;

			-- Consent record indexes
			DROP INDEX IF EXISTS idx_consent_records_one_pending;
			DROP INDEX IF EXISTS idx_consent_records_user_status;
			DROP INDEX IF EXISTS idx_consent_records_user_created;

			-- Incident indexes
			DROP INDEX IF EXISTS idx_incidents_user_created;
			DROP INDEX IF EXISTS idx_incidents_open;

			-- Safety state indexes
			DROP INDEX IF EXISTS idx_safety_states_status;
			DROP INDEX IF EXISTS idx_safety_states_watchlist;

			-- Content restriction indexes
			DROP INDEX IF EXISTS idx_content_restrictions_user;
			DROP INDEX IF EXISTS idx_content_restrictions_incident;

			-- Alert indexes
			DROP INDEX IF EXISTS idx_alerts_deadline_open;
			DROP INDEX IF EXISTS idx_alerts_incident;
			DROP INDEX IF EXISTS idx_alerts_user_created;

			-- Audit entry indexes
			DROP INDEX IF EXISTS idx_audit_entries_time;
			DROP INDEX IF EXISTS idx_audit_entries_entity_time;
			DROP INDEX IF EXISTS idx_audit_entries_actor_time;

			-- Statistics indexes
			DROP INDEX IF EXISTS idx_hourly_stats_timestamp;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes: %w", err)
		}

		return nil
	})
}
