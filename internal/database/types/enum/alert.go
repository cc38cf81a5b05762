package enum

// AlertStatus represents the dispatch state of an escalation alert.
//
//go:generate go tool enumer -type=AlertStatus -trimprefix=AlertStatus
type AlertStatus int

const (
	// AlertStatusPending indicates the alert is broadcast and waiting for an accept.
	AlertStatusPending AlertStatus = iota
	// AlertStatusAccepted indicates a responder claimed the alert.
	AlertStatusAccepted
	// AlertStatusUnstaffed indicates every escalation level lapsed without an accept.
	AlertStatusUnstaffed
)
