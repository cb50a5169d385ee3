package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Merge     MergeConfig     `yaml:"merge" envconfig:"MERGE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative entries are
// resolved against DataDir, and a relative DataDir against the executable directory.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LedgerDir    string `yaml:"ledger_dir" envconfig:"LEDGER_DIR" validate:"required"`
	InboxDir     string `yaml:"inbox_dir" envconfig:"INBOX_DIR" validate:"required"`
	FreshnessDir string `yaml:"freshness_dir" envconfig:"FRESHNESS_DIR" validate:"required"`
	ExportDir    string `yaml:"export_dir" envconfig:"EXPORT_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	HolidaysFile string `yaml:"holidays_file" envconfig:"HOLIDAYS_FILE"`
}

// MergeConfig controls the bulletin merger.
type MergeConfig struct {
	GapFill        bool     `yaml:"gap_fill" envconfig:"GAP_FILL"`
	AnchorWeekday  string   `yaml:"anchor_weekday" envconfig:"ANCHOR_WEEKDAY" validate:"weekday"`
	TargetWeekdays []string `yaml:"target_weekdays" envconfig:"TARGET_WEEKDAYS" validate:"min=1,dive,weekday"`
	Workers        int      `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	WatchDebounce  time.Duration `yaml:"watch_debounce" envconfig:"WATCH_DEBOUNCE" validate:"gte=0"`
	// HolidayCalendar selects a named list from the holidays file on top of the default list.
	HolidayCalendar string `yaml:"holiday_calendar" envconfig:"HOLIDAY_CALENDAR"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so envconfig only touches what is set.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday converts a case-insensitive weekday name.
func ParseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return wd, nil
}

// Anchor returns the parsed carry-forward anchor weekday.
func (m MergeConfig) Anchor() time.Weekday {
	wd, _ := ParseWeekday(m.AnchorWeekday)
	return wd
}

// Targets returns the parsed carry-forward target weekdays.
func (m MergeConfig) Targets() []time.Weekday {
	out := make([]time.Weekday, 0, len(m.TargetWeekdays))
	for _, name := range m.TargetWeekdays {
		if wd, err := ParseWeekday(name); err == nil {
			out = append(out, wd)
		}
	}
	return out
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := ParseWeekday(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "",
		},
		Paths: PathsConfig{
			DataDir:      DefaultDataDir,
			LedgerDir:    DefaultLedgerDir,
			InboxDir:     DefaultInboxDir,
			FreshnessDir: DefaultFreshnessDir,
			ExportDir:    DefaultExportDir,
			LogsDir:      DefaultLogsDir,
			HolidaysFile: DefaultHolidaysFile,
		},
		Merge: MergeConfig{
			GapFill:        true,
			AnchorWeekday:  DefaultAnchorWeekday,
			TargetWeekdays: strings.Split(DefaultTargetWeekdays, ","),
			Workers:        4,
			WatchDebounce:  DefaultWatchDebounce,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			MetricExporter: "prometheus",
			TraceExporter:  "none",
			SampleRatio:    1.0,
		},
	}
}
