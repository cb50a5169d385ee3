package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	DataDir      string
	LedgerDir    string
	InboxDir     string
	FreshnessDir string
	ExportDir    string
	LogsDir      string
	HolidaysFile string
}

// GetPaths resolves the configured paths. A relative data directory is taken
// relative to the executable, never the current working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	dataDir := cfg.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}
	return PathsUnder(dataDir, cfg), nil
}

// PathsUnder resolves cfg against an explicit absolute data directory.
func PathsUnder(dataDir string, cfg PathsConfig) *Paths {
	p := &Paths{
		DataDir:      dataDir,
		LedgerDir:    under(dataDir, cfg.LedgerDir),
		InboxDir:     under(dataDir, cfg.InboxDir),
		FreshnessDir: under(dataDir, cfg.FreshnessDir),
		ExportDir:    under(dataDir, cfg.ExportDir),
		LogsDir:      under(dataDir, cfg.LogsDir),
	}
	if cfg.HolidaysFile != "" {
		p.HolidaysFile = under(dataDir, cfg.HolidaysFile)
	}
	return p
}

func under(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates every directory the application writes to.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.LedgerDir, p.InboxDir, p.FreshnessDir, p.ExportDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLedgerPath returns the table file of an entity.
func (p *Paths) GetLedgerPath(entity string) string {
	return filepath.Join(p.LedgerDir, SafeEntityName(entity)+LedgerFileExt)
}

// GetLogPath returns a file inside the logs directory.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// SafeEntityName maps an entity key to a file name component.
func SafeEntityName(entity string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_", "..", "_")
	return strings.ToLower(r.Replace(strings.TrimSpace(entity)))
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Debug("Path resolution",
		slog.String("data_dir", p.DataDir),
		slog.String("ledger_dir", p.LedgerDir),
		slog.String("inbox_dir", p.InboxDir),
		slog.String("freshness_dir", p.FreshnessDir),
		slog.String("export_dir", p.ExportDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("holidays_file", p.HolidaysFile))
}
