// Package types holds the records written into compliance export bundles.
package types

import "time"

// AuditRecord is one audit log entry in an export bundle. Entity ids are
// replaced by pseudonyms so a bundle can be shared with a regulator
// without exposing raw identifiers.
type AuditRecord struct {
	EntityKind string
	EntityHash string
	FromState  string
	ToState    string
	ActorKind  string
	Reason     string
	Detail     string
	CreatedAt  time.Time
}

// IncidentRecord is one safety incident in an export bundle. The subject
// and the reporter both appear as pseudonyms.
type IncidentRecord struct {
	UserHash     string
	ContentRef   string
	Severity     string
	Category     string
	Source       string
	ReporterHash string
	Outcome      string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}
