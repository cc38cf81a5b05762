package core

const (
	// EscalationWorkerType identifies the escalation monitor in heartbeats
	// and log file names.
	EscalationWorkerType = "escalation"

	// StatsWorkerType identifies the stats snapshot worker in heartbeats
	// and log file names.
	StatsWorkerType = "stats"
)
