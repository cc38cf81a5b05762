package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	dbTypes "github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/export/csv"
	"github.com/trygglabs/trygg/internal/export/sqlite"
	"github.com/trygglabs/trygg/internal/export/types"
	"github.com/trygglabs/trygg/internal/setup"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatSQLite Format = "sqlite"
	FormatCSV    Format = "csv"
)

const (
	// EngineVersion represents the version of the export engine.
	// This should be updated when making breaking changes to the export format.
	EngineVersion = "1.0.0"

	// auditPageSize is how many audit entries are fetched per round trip.
	auditPageSize = 1000
)

// Config holds the parameters for one compliance export run.
type Config struct {
	ExportVersion string
	Salt          string
	Description   string
	HashType      string
	Iterations    uint32
	Memory        uint32
	Start         time.Time
	End           time.Time
	Concurrency   int64
}

// Manifest accompanies a bundle and records what was exported and how.
// The salt never leaves the operator's hands; with it a reader could
// confirm whether a known identifier appears in the bundle.
type Manifest struct {
	EngineVersion string     `json:"engineVersion"`
	ExportVersion string     `json:"exportVersion"`
	Description   string     `json:"description"`
	HashType      string     `json:"hashType"`
	Iterations    uint32     `json:"iterations"`
	Memory        uint32     `json:"memory,omitempty"`
	WindowStart   *time.Time `json:"windowStart,omitempty"`
	WindowEnd     *time.Time `json:"windowEnd,omitempty"`
	GeneratedAt   time.Time  `json:"generatedAt"`
	AuditEntries  int        `json:"auditEntries"`
	Incidents     int        `json:"incidents"`
}

// Exporter assembles pseudonymized audit and incident bundles for
// regulator and data protection officer requests.
type Exporter struct {
	app     *setup.App
	outDir  string
	config  *Config
	formats []Format
}

// New creates a new exporter instance.
func New(app *setup.App, outDir string, config *Config) *Exporter {
	return &Exporter{
		app:    app,
		outDir: outDir,
		config: config,
		formats: []Format{
			FormatSQLite,
			FormatCSV,
		},
	}
}

// ExportAll exports all data in all supported formats.
func (e *Exporter) ExportAll(ctx context.Context) error {
	// Print export configuration
	fmt.Printf("Starting export with configuration:\n")
	fmt.Printf("  Hash Type: %s\n", e.config.HashType)
	fmt.Printf("  Concurrency: %d workers\n", e.config.Concurrency)
	fmt.Printf("  Iterations: %d\n", e.config.Iterations)

	if e.config.HashType == string(HashTypeArgon2id) {
		fmt.Printf("  Memory: %d MB\n", e.config.Memory)
	}

	if !e.config.Start.IsZero() {
		fmt.Printf("  Window: %s to %s\n",
			e.config.Start.Format(time.RFC3339), e.config.End.Format(time.RFC3339))
	}

	fmt.Printf("  Output Directory: %s\n", e.outDir)
	fmt.Printf("  Export Version: %s\n", e.config.ExportVersion)
	fmt.Printf("  Engine Version: %s\n", EngineVersion)
	fmt.Printf("  Description: %s\n\n", e.config.Description)

	// Fetch everything inside the window
	fmt.Printf("Fetching data from database...\n")

	entries, incidents, err := e.getWindowData(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d audit entries and %d incidents to export\n\n", len(entries), len(incidents))

	// Replace identifiers with pseudonyms
	fmt.Printf("Pseudonymizing identifiers...\n")

	pseudonyms := e.pseudonymize(entries, incidents)

	fmt.Printf("\nCompleted hashing %d distinct identifiers\n\n", len(pseudonyms))

	auditRecords := buildAuditRecords(entries, pseudonyms)
	incidentRecords := buildIncidentRecords(incidents, pseudonyms)

	// Save manifest
	fmt.Printf("Saving export manifest...\n")

	if err := e.writeManifest(len(auditRecords), len(incidentRecords)); err != nil {
		return err
	}

	// Export each format
	fmt.Printf("Exporting data in %d formats...\n", len(e.formats))

	for _, format := range e.formats {
		fmt.Printf("  Writing %s format...\n", format)

		if err := e.export(format, auditRecords, incidentRecords); err != nil {
			return fmt.Errorf("failed to export %s format: %w", format, err)
		}
	}

	fmt.Printf("\nExport completed successfully\n")
	fmt.Printf("Files written to: %s\n", e.outDir)

	return nil
}

// getWindowData retrieves the audit entries and incidents covered by the
// configured window. A zero window covers everything.
func (e *Exporter) getWindowData(
	ctx context.Context,
) (entries []*dbTypes.AuditEntry, incidents []*dbTypes.Incident, err error) {
	filter := dbTypes.AuditFilter{StartTime: e.config.Start, EndTime: e.config.End}

	var cursor *dbTypes.AuditCursor

	for {
		page, next, err := e.app.DB.Model().Audit().GetEntries(ctx, filter, cursor, auditPageSize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get audit entries: %w", err)
		}

		entries = append(entries, page...)

		if next == nil {
			break
		}

		cursor = next
	}

	// The log pages newest first; the bundle reads oldest first.
	slices.Reverse(entries)

	incidents, err = e.app.DB.Model().Safety().ListIncidentsBetween(ctx, e.config.Start, e.config.End)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list incidents: %w", err)
	}

	return entries, incidents, nil
}

// pseudonymize hashes every distinct identifier appearing in the window
// and returns the lookup table. One identifier maps to one pseudonym no
// matter how many files it appears in.
func (e *Exporter) pseudonymize(
	entries []*dbTypes.AuditEntry, incidents []*dbTypes.Incident,
) map[string]string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(entries)+len(incidents))

	add := func(id string) {
		if id == "" {
			return
		}

		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, entry := range entries {
		add(entry.EntityID)
	}

	for _, incident := range incidents {
		add(incident.UserID.String())
		add(incident.ReportedBy)
	}

	hashes := hashIDs(ids, e.config.Salt, HashType(e.config.HashType),
		e.config.Concurrency, e.config.Iterations, e.config.Memory)

	pseudonyms := make(map[string]string, len(ids))
	for i, id := range ids {
		pseudonyms[id] = hashes[i]
	}

	return pseudonyms
}

// buildAuditRecords converts audit entries to export records.
func buildAuditRecords(entries []*dbTypes.AuditEntry, pseudonyms map[string]string) []*types.AuditRecord {
	records := make([]*types.AuditRecord, len(entries))
	for i, entry := range entries {
		records[i] = &types.AuditRecord{
			EntityKind: entry.EntityKind.String(),
			EntityHash: pseudonyms[entry.EntityID],
			FromState:  entry.FromState,
			ToState:    entry.ToState,
			ActorKind:  entry.ActorKind.String(),
			Reason:     entry.Reason.String(),
			Detail:     entry.Detail,
			CreatedAt:  entry.CreatedAt,
		}
	}

	return records
}

// buildIncidentRecords converts incidents to export records.
func buildIncidentRecords(incidents []*dbTypes.Incident, pseudonyms map[string]string) []*types.IncidentRecord {
	records := make([]*types.IncidentRecord, len(incidents))
	for i, incident := range incidents {
		record := &types.IncidentRecord{
			UserHash:   pseudonyms[incident.UserID.String()],
			ContentRef: incident.ContentRef,
			Severity:   incident.Severity.String(),
			Category:   incident.Category,
			Source:     incident.Source.String(),
			CreatedAt:  incident.CreatedAt,
			ResolvedAt: incident.ResolvedAt,
		}

		if incident.ReportedBy != "" {
			record.ReporterHash = pseudonyms[incident.ReportedBy]
		}

		if incident.Outcome != nil {
			record.Outcome = incident.Outcome.String()
		}

		records[i] = record
	}

	return records
}

// writeManifest saves the bundle manifest next to the data files.
func (e *Exporter) writeManifest(auditCount, incidentCount int) error {
	manifest := Manifest{
		EngineVersion: EngineVersion,
		ExportVersion: e.config.ExportVersion,
		Description:   e.config.Description,
		HashType:      e.config.HashType,
		Iterations:    e.config.Iterations,
		Memory:        e.config.Memory,
		GeneratedAt:   time.Now().UTC(),
		AuditEntries:  auditCount,
		Incidents:     incidentCount,
	}

	if !e.config.Start.IsZero() {
		manifest.WindowStart = &e.config.Start
		manifest.WindowEnd = &e.config.End
	}

	manifestData, err := sonic.MarshalIndent(manifest, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal export manifest: %w", err)
	}

	manifestPath := filepath.Join(e.outDir, "export_manifest.json")
	if err := os.WriteFile(manifestPath, manifestData, 0o600); err != nil {
		return fmt.Errorf("failed to write export manifest: %w", err)
	}

	return nil
}

// export handles exporting data in the specified format.
func (e *Exporter) export(
	format Format, auditRecords []*types.AuditRecord, incidentRecords []*types.IncidentRecord,
) error {
	var exporter interface {
		Export(auditRecords []*types.AuditRecord, incidentRecords []*types.IncidentRecord) error
	}

	switch format {
	case FormatSQLite:
		exporter = sqlite.New(e.outDir)
	case FormatCSV:
		exporter = csv.New(e.outDir)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return exporter.Export(auditRecords, incidentRecords)
}
