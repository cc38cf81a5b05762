// Package csv writes compliance bundles as csv files.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trygglabs/trygg/internal/export/types"
)

// Exporter handles exporting records to csv files.
type Exporter struct {
	outDir string
}

// New creates a new csv exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes audit and incident records to separate csv files.
func (e *Exporter) Export(auditRecords []*types.AuditRecord, incidentRecords []*types.IncidentRecord) error {
	// Remove existing files if they exist
	files := []string{"audit.csv", "incidents.csv"}
	for _, file := range files {
		path := filepath.Join(e.outDir, file)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing file %s: %w", file, err)
		}
	}

	if err := e.writeAuditFile(auditRecords); err != nil {
		return fmt.Errorf("failed to export audit entries: %w", err)
	}

	if err := e.writeIncidentFile(incidentRecords); err != nil {
		return fmt.Errorf("failed to export incidents: %w", err)
	}

	return nil
}

// writeAuditFile writes audit records to a csv file.
func (e *Exporter) writeAuditFile(records []*types.AuditRecord) error {
	file, err := os.Create(filepath.Join(e.outDir, "audit.csv"))
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	// Create CSV writer
	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"entity_kind", "entity_hash", "from_state", "to_state",
		"actor_kind", "reason", "detail", "created_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write each record
	for _, record := range records {
		if err := writer.Write([]string{
			record.EntityKind,
			record.EntityHash,
			record.FromState,
			record.ToState,
			record.ActorKind,
			record.Reason,
			record.Detail,
			record.CreatedAt.UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

// writeIncidentFile writes incident records to a csv file.
func (e *Exporter) writeIncidentFile(records []*types.IncidentRecord) error {
	file, err := os.Create(filepath.Join(e.outDir, "incidents.csv"))
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	// Create CSV writer
	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"user_hash", "content_ref", "severity", "category", "source",
		"reporter_hash", "outcome", "created_at", "resolved_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write each record
	for _, record := range records {
		resolvedAt := ""
		if record.ResolvedAt != nil {
			resolvedAt = record.ResolvedAt.UTC().Format(time.RFC3339Nano)
		}

		if err := writer.Write([]string{
			record.UserHash,
			record.ContentRef,
			record.Severity,
			record.Category,
			record.Source,
			record.ReporterHash,
			record.Outcome,
			record.CreatedAt.UTC().Format(time.RFC3339Nano),
			resolvedAt,
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}
