// Package sqlite writes compliance bundles as SQLite databases.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trygglabs/trygg/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// batchSize is how many rows go into one insert transaction.
const batchSize = 1000

// Exporter handles exporting records to SQLite databases.
type Exporter struct {
	outDir string
}

// New creates a new SQLite exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes audit and incident records to separate SQLite databases.
func (e *Exporter) Export(auditRecords []*types.AuditRecord, incidentRecords []*types.IncidentRecord) error {
	// Remove existing files if they exist
	files := []string{"audit.db", "incidents.db"}
	for _, file := range files {
		path := filepath.Join(e.outDir, file)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing file %s: %w", file, err)
		}
	}

	if err := e.createAuditDB(auditRecords); err != nil {
		return fmt.Errorf("failed to export audit entries: %w", err)
	}

	if err := e.createIncidentDB(incidentRecords); err != nil {
		return fmt.Errorf("failed to export incidents: %w", err)
	}

	return nil
}

// createAuditDB creates the audit log database.
func (e *Exporter) createAuditDB(records []*types.AuditRecord) error {
	conn, err := sqlite.OpenConn(filepath.Join(e.outDir, "audit.db"), sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	err = sqlitex.Execute(conn, `
		CREATE TABLE audit_log (
			entity_kind TEXT NOT NULL,
			entity_hash TEXT NOT NULL,
			from_state TEXT NOT NULL,
			to_state TEXT NOT NULL,
			actor_kind TEXT NOT NULL,
			reason TEXT NOT NULL,
			detail TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))

		err = sqlitex.Execute(conn, "BEGIN TRANSACTION", nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, record := range records[i:end] {
			err = sqlitex.Execute(conn, `
				INSERT INTO audit_log (
					entity_kind, entity_hash, from_state, to_state,
					actor_kind, reason, detail, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				&sqlitex.ExecOptions{
					Args: []any{
						record.EntityKind, record.EntityHash, record.FromState, record.ToState,
						record.ActorKind, record.Reason, record.Detail,
						record.CreatedAt.UTC().Format(time.RFC3339Nano),
					},
				})
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}

		err = sqlitex.Execute(conn, "COMMIT", nil)
		if err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	return nil
}

// createIncidentDB creates the incidents database.
func (e *Exporter) createIncidentDB(records []*types.IncidentRecord) error {
	conn, err := sqlite.OpenConn(filepath.Join(e.outDir, "incidents.db"), sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	err = sqlitex.Execute(conn, `
		CREATE TABLE incidents (
			user_hash TEXT NOT NULL,
			content_ref TEXT NOT NULL,
			severity TEXT NOT NULL,
			category TEXT NOT NULL,
			source TEXT NOT NULL,
			reporter_hash TEXT NOT NULL,
			outcome TEXT NOT NULL,
			created_at TEXT NOT NULL,
			resolved_at TEXT
		)
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))

		err = sqlitex.Execute(conn, "BEGIN TRANSACTION", nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for _, record := range records[i:end] {
			var resolvedAt any
			if record.ResolvedAt != nil {
				resolvedAt = record.ResolvedAt.UTC().Format(time.RFC3339Nano)
			}

			err = sqlitex.Execute(conn, `
				INSERT INTO incidents (
					user_hash, content_ref, severity, category, source,
					reporter_hash, outcome, created_at, resolved_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				&sqlitex.ExecOptions{
					Args: []any{
						record.UserHash, record.ContentRef, record.Severity, record.Category,
						record.Source, record.ReporterHash, record.Outcome,
						record.CreatedAt.UTC().Format(time.RFC3339Nano), resolvedAt,
					},
				})
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}

		err = sqlitex.Execute(conn, "COMMIT", nil)
		if err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	return nil
}
