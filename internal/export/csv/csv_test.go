package csv_test

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	exportCSV "github.com/trygglabs/trygg/internal/export/csv"
	"github.com/trygglabs/trygg/internal/export/types"
)

// readCSVFile reads a csv file and returns its header and rows.
func readCSVFile(t *testing.T, path string) (header []string, rows [][]string) {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := csv.NewReader(file)

	header, err = reader.Read()
	require.NoError(t, err)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		require.NoError(t, err)

		rows = append(rows, row)
	}

	return header, rows
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	resolved := created.Add(45 * time.Minute)

	tempDir := t.TempDir()
	e := exportCSV.New(tempDir)

	auditRecords := []*types.AuditRecord{
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
			EntityKind: "User",
			EntityHash: "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210",
			ToState:    "MinorSenior",
			ActorKind:  "System",
			Reason:     "BirthDateCorrected",
			Detail:     "detail with, a comma",
			CreatedAt:  created.Add(time.Minute),
		},
	}
	incidentRecords := []*types.IncidentRecord{
		{
			UserHash:   "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
			ContentRef: "post:13",
			Severity:   "Critical",
			Category:   "self_harm",
			Source:     "Classifier",
			Outcome:    "HandedOff",
			CreatedAt:  created,
			ResolvedAt: &resolved,
		},
		{
			UserHash:   "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210",
			ContentRef: "profile:55",
			Severity:   "Critical",
			Source:     "UserReport",
			CreatedAt:  created.Add(2 * time.Hour),
		},
	}

	err := e.Export(auditRecords, incidentRecords)
	require.NoError(t, err)

	header, rows := readCSVFile(t, filepath.Join(tempDir, "audit.csv"))
	assert.Equal(t, []string{
		"entity_kind", "entity_hash", "from_state", "to_state",
		"actor_kind", "reason", "detail", "created_at",
	}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "Safety", rows[0][0])
	assert.Equal(t, "Locked", rows[0][3])
	assert.Equal(t, "CriticalContent", rows[0][5])
	assert.Equal(t, created.Format(time.RFC3339Nano), rows[0][7])
	assert.Equal(t, "detail with, a comma", rows[1][6], "commas must survive the round trip")

	header, rows = readCSVFile(t, filepath.Join(tempDir, "incidents.csv"))
	assert.Equal(t, []string{
		"user_hash", "content_ref", "severity", "category", "source",
		"reporter_hash", "outcome", "created_at", "resolved_at",
	}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "HandedOff", rows[0][6])
	assert.Equal(t, resolved.Format(time.RFC3339Nano), rows[0][8])
	assert.Empty(t, rows[1][8], "an open incident has no resolution time")
}

func TestExporter_EmptyBundle(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	e := exportCSV.New(tempDir)

	err := e.Export(nil, nil)
	require.NoError(t, err)

	header, rows := readCSVFile(t, filepath.Join(tempDir, "audit.csv"))
	assert.Len(t, header, 8)
	assert.Empty(t, rows)

	header, rows = readCSVFile(t, filepath.Join(tempDir, "incidents.csv"))
	assert.Len(t, header, 9)
	assert.Empty(t, rows)
}

func TestExporter_OverwritesExistingFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	for _, file := range []string{"audit.csv", "incidents.csv"} {
		err := os.WriteFile(filepath.Join(tempDir, file), []byte("stale,data\n"), 0o644)
		require.NoError(t, err)
	}

	e := exportCSV.New(tempDir)

	err := e.Export(nil, nil)
	require.NoError(t, err)

	header, rows := readCSVFile(t, filepath.Join(tempDir, "audit.csv"))
	assert.Equal(t, "entity_kind", header[0])
	assert.Empty(t, rows)
}
