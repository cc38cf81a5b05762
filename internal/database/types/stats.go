package types

import "time"

// HourlyStats stores a snapshot of safety activity for one hour.
type HourlyStats struct {
	Timestamp          time.Time `bun:",pk"      json:"timestamp"`
	LocksActive        int64     `bun:",notnull" json:"locksActive"`
	LocksOpened        int64     `bun:",notnull" json:"locksOpened"`
	IncidentsCritical  int64     `bun:",notnull" json:"incidentsCritical"`
	IncidentsSensitive int64     `bun:",notnull" json:"incidentsSensitive"`
	IncidentsResolved  int64     `bun:",notnull" json:"incidentsResolved"`
	AlertsOpen         int64     `bun:",notnull" json:"alertsOpen"`
	AlertsUnstaffed    int64     `bun:",notnull" json:"alertsUnstaffed"`
	ConsentsPending    int64     `bun:",notnull" json:"consentsPending"`
	ConsentsApproved   int64     `bun:",notnull" json:"consentsApproved"`
	UsersWatchlisted   int64     `bun:",notnull" json:"usersWatchlisted"`
}

// SafetyCounts holds the point-in-time safety numbers gathered for a
// snapshot.
type SafetyCounts struct {
	LocksActive      int
	Watchlisted      int
	AlertsOpen       int
	AlertsUnstaffed  int
	ConsentsPending  int
	ConsentsApproved int
}
