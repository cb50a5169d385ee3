package config

import "time"

// Application constants
const (
	AppName    = "pipeledger"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. PIPELEDGER_LOGGING_LEVEL.
	EnvPrefix = "PIPELEDGER"

	// File Paths (relative to the data directory)
	DefaultDataDir      = "data"
	DefaultLedgerDir    = "ledgers"
	DefaultInboxDir     = "inbox"
	DefaultExportDir    = "exports"
	DefaultFreshnessDir = "freshness"
	DefaultLogsDir      = "logs"
	DefaultHolidaysFile = "holidays.yaml"

	// Ledger file layout
	LedgerFileExt   = ".csv"
	LedgerTempGlob  = ".ledger-*.tmp"
	SyntheticColumn = "Synthetic"

	// Carry-forward defaults: Thursday snapshots fill Friday and Saturday.
	DefaultAnchorWeekday  = "Thursday"
	DefaultTargetWeekdays = "Friday,Saturday"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Server timeouts
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Watcher debounce so a half-written bulletin is not read early.
	DefaultWatchDebounce = 500 * time.Millisecond
)
