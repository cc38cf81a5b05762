package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// verifyAuditFile reads an audit database and verifies its contents match the expected records.
func verifyAuditFile(t *testing.T, path string, expectedRecords []*types.AuditRecord) {
	t.Helper()

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer conn.Close()

	var records []*types.AuditRecord

	err = sqlitex.ExecuteTransient(conn, `
		SELECT entity_kind, entity_hash, from_state, to_state, actor_kind, reason, detail, created_at
		FROM audit_log ORDER BY rowid`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			createdAt, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(7))
			if err != nil {
				return err
			}

			records = append(records, &types.AuditRecord{
				EntityKind: stmt.ColumnText(0),
				EntityHash: stmt.ColumnText(1),
				FromState:  stmt.ColumnText(2),
				ToState:    stmt.ColumnText(3),
				ActorKind:  stmt.ColumnText(4),
				Reason:     stmt.ColumnText(5),
				Detail:     stmt.ColumnText(6),
				CreatedAt:  createdAt,
			})

			return nil
		},
	})
	require.NoError(t, err)

	require.Len(t, records, len(expectedRecords), "record count mismatch")

	for i, expected := range expectedRecords {
		assert.Equal(t, expected.EntityKind, records[i].EntityKind)
		assert.Equal(t, expected.EntityHash, records[i].EntityHash)
		assert.Equal(t, expected.FromState, records[i].FromState)
		assert.Equal(t, expected.ToState, records[i].ToState)
		assert.Equal(t, expected.ActorKind, records[i].ActorKind)
		assert.Equal(t, expected.Reason, records[i].Reason)
		assert.Equal(t, expected.Detail, records[i].Detail)
		assert.True(t, expected.CreatedAt.Equal(records[i].CreatedAt), "created_at mismatch")
	}
}

// verifyIncidentFile reads an incident database and verifies its contents match the expected records.
func verifyIncidentFile(t *testing.T, path string, expectedRecords []*types.IncidentRecord) {
	t.Helper()

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer conn.Close()

	var records []*types.IncidentRecord

	err = sqlitex.ExecuteTransient(conn, `
		SELECT user_hash, content_ref, severity, category, source, reporter_hash, outcome, created_at, resolved_at
		FROM incidents ORDER BY rowid`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			createdAt, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(7))
			if err != nil {
				return err
			}

			record := &types.IncidentRecord{
				UserHash:     stmt.ColumnText(0),
				ContentRef:   stmt.ColumnText(1),
				Severity:     stmt.ColumnText(2),
				Category:     stmt.ColumnText(3),
				Source:       stmt.ColumnText(4),
				ReporterHash: stmt.ColumnText(5),
				Outcome:      stmt.ColumnText(6),
				CreatedAt:    createdAt,
			}

			if stmt.ColumnType(8) != sqlite.TypeNull {
				resolvedAt, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(8))
				if err != nil {
					return err
				}

				record.ResolvedAt = &resolvedAt
			}

			records = append(records, record)

			return nil
		},
	})
	require.NoError(t, err)

	require.Len(t, records, len(expectedRecords), "record count mismatch")

	for i, expected := range expectedRecords {
		assert.Equal(t, expected.UserHash, records[i].UserHash)
		assert.Equal(t, expected.Severity, records[i].Severity)
		assert.Equal(t, expected.Outcome, records[i].Outcome)

		if expected.ResolvedAt == nil {
			assert.Nil(t, records[i].ResolvedAt)
		} else {
			require.NotNil(t, records[i].ResolvedAt)
			assert.True(t, expected.ResolvedAt.Equal(*records[i].ResolvedAt), "resolved_at mismatch")
		}
	}
}

func TestExporter_Export(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	resolved := created.Add(45 * time.Minute)

	tests := []struct {
		name            string
		auditRecords    []*types.AuditRecord
		incidentRecords []*types.IncidentRecord
	}{
		{
			name: "basic export",
			auditRecords: []*types.AuditRecord{
				{
					EntityKind: "Safety",
					EntityHash: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
					FromState:  "Normal",
					ToState:    "Locked",
					ActorKind:  "System",
					Reason:     "CriticalContent",
					Detail:     "post:13",
					CreatedAt:  created,
				},
				{
					EntityKind: "Safety",
					EntityHash: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
					FromState:  "Locked",
					ToState:    "Watchlisted",
					ActorKind:  "Responder",
					Reason:     "Resolved",
					CreatedAt:  created.Add(time.Hour),
				},
			},
			incidentRecords: []*types.IncidentRecord{
				{
					UserHash:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
					ContentRef:   "post:13",
					Severity:     "Critical",
					Category:     "self_harm",
					Source:       "Classifier",
					ReporterHash: "",
					Outcome:      "HandedOff",
					CreatedAt:    created,
					ResolvedAt:   &resolved,
				},
				{
					UserHash:   "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210",
					ContentRef: "profile:55",
					Severity:   "Critical",
					Source:     "UserReport",
					CreatedAt:  created.Add(2 * time.Hour),
				},
			},
		},
		{
			name:            "empty bundle",
			auditRecords:    []*types.AuditRecord{},
			incidentRecords: []*types.IncidentRecord{},
		},
		{
			name: "details with special characters",
			auditRecords: []*types.AuditRecord{
				{
					EntityKind: "User",
					EntityHash: "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc3",
					ToState:    "MinorSenior",
					ActorKind:  "System",
					Reason:     "BirthDateCorrected",
					Detail:     "detail with ' single and \" double quotes",
					CreatedAt:  created,
				},
			},
			incidentRecords: []*types.IncidentRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			e := New(tempDir)

			err := e.Export(tt.auditRecords, tt.incidentRecords)
			require.NoError(t, err)

			verifyAuditFile(t, filepath.Join(tempDir, "audit.db"), tt.auditRecords)
			verifyIncidentFile(t, filepath.Join(tempDir, "incidents.db"), tt.incidentRecords)
		})
	}
}

func TestExporter_ExistingFiles(t *testing.T) {
	tempDir := t.TempDir()

	// Create existing files
	files := []string{"audit.db", "incidents.db"}
	for _, file := range files {
		err := os.WriteFile(filepath.Join(tempDir, file), []byte("invalid sqlite db"), 0o644)
		require.NoError(t, err)
	}

	e := New(tempDir)

	auditRecords := []*types.AuditRecord{
		{
			EntityKind: "Consent",
			EntityHash: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
			ToState:    "Pending",
			ActorKind:  "System",
			Reason:     "ConsentRequested",
			CreatedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
	}

	// Export should overwrite existing files
	err := e.Export(auditRecords, nil)
	require.NoError(t, err)

	verifyAuditFile(t, filepath.Join(tempDir, "audit.db"), auditRecords)
	verifyIncidentFile(t, filepath.Join(tempDir, "incidents.db"), nil)
}

func TestExporter_DatabaseSchema(t *testing.T) {
	tempDir := t.TempDir()
	e := New(tempDir)

	err := e.Export(nil, nil)
	require.NoError(t, err)

	conn, err := sqlite.OpenConn(filepath.Join(tempDir, "audit.db"), sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer conn.Close()

	var columns []string

	err = sqlitex.ExecuteTransient(conn, "PRAGMA table_info(audit_log)", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			columns = append(columns, stmt.ColumnText(1)) // Column name is at index 1
			return nil
		},
	})
	require.NoError(t, err)

	expectedColumns := []string{
		"entity_kind", "entity_hash", "from_state", "to_state",
		"actor_kind", "reason", "detail", "created_at",
	}
	assert.Equal(t, expectedColumns, columns)
}
