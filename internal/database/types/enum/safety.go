package enum

// SafetyStatus represents the per-user crisis state machine position.
//
//go:generate go tool enumer -type=SafetyStatus -trimprefix=SafetyStatus
type SafetyStatus int

const (
	// SafetyStatusNormal indicates no active safety concern.
	SafetyStatusNormal SafetyStatus = iota
	// SafetyStatusLocked indicates the protective lock is active and public activity is suspended.
	SafetyStatusLocked
	// SafetyStatusEscalated indicates a responder accepted the alert and is engaged.
	SafetyStatusEscalated
	// SafetyStatusResolved indicates the responder recorded the user as safe or handed off.
	SafetyStatusResolved
	// SafetyStatusWatchlisted indicates full access with a passive check-in flag.
	SafetyStatusWatchlisted
)

// Restricted reports whether the state suspends posting and messaging.
func (i SafetyStatus) Restricted() bool {
	return i == SafetyStatusLocked || i == SafetyStatusEscalated
}

// ActiveIncident reports whether the state carries an unresolved incident.
func (i SafetyStatus) ActiveIncident() bool {
	return i == SafetyStatusLocked || i == SafetyStatusEscalated
}

// Severity represents the classifier's assessment of a piece of content.
//
//go:generate go tool enumer -type=Severity -trimprefix=Severity
type Severity int

const (
	// SeverityNone indicates no safety concern was found.
	SeverityNone Severity = iota
	// SeveritySensitive indicates content that warrants passive review, not a lock.
	SeveritySensitive
	// SeverityCritical indicates content that triggers the protective lock.
	SeverityCritical
)

// IncidentSource represents what produced a safety incident.
//
//go:generate go tool enumer -type=IncidentSource -trimprefix=IncidentSource
type IncidentSource int

const (
	// IncidentSourceClassifier indicates the incident came from content classification.
	IncidentSourceClassifier IncidentSource = iota
	// IncidentSourceUserReport indicates the incident came from an immediate-danger report.
	IncidentSourceUserReport
)

// Disposition represents the responder's terminal assessment of an incident.
//
//go:generate go tool enumer -type=Disposition -trimprefix=Disposition
type Disposition int

const (
	// DispositionSafe indicates the user was engaged and assessed as safe.
	DispositionSafe Disposition = iota
	// DispositionHandedOff indicates the user was handed off to external care.
	DispositionHandedOff
	// DispositionFalseAlarm indicates the trigger turned out to be benign.
	DispositionFalseAlarm
)
