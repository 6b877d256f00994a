package config

const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./library.db"

	// DefaultFineSweepSchedule runs the overdue sweep daily at 01:00
	DefaultFineSweepSchedule = "0 1 * * *"

	// DefaultAuditCleanupSchedule prunes old audit events daily at 03:30
	DefaultAuditCleanupSchedule = "30 3 * * *"
)
