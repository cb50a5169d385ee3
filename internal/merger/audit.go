package merger

import (
	"context"
	"log/slog"
	"time"

	"pipeledger/pkg/contracts/domain"
)

// AuditEntry describes one changed ledger cell.
type AuditEntry struct {
	BulletinID string
	Source     string
	Published  time.Time
	Entity     string
	Cycle      int
	Date       domain.Date
	Field      string
	OldValue   string
	NewValue   string
}

// AuditSink receives one entry per changed cell. Failures are ignored by the
// merger.
type AuditSink interface {
	Record(ctx context.Context, e AuditEntry) error
}

// LogAudit writes audit entries as structured log lines.
type LogAudit struct {
	logger *slog.Logger
}

// NewLogAudit creates a LogAudit.
func NewLogAudit(logger *slog.Logger) *LogAudit {
	return &LogAudit{logger: logger.With(slog.String("component", "audit"))}
}

func (a *LogAudit) Record(ctx context.Context, e AuditEntry) error {
	a.logger.InfoContext(ctx, "ledger cell changed",
		slog.String("bulletin_id", e.BulletinID),
		slog.String("source", e.Source),
		slog.Time("published", e.Published),
		slog.String("entity", e.Entity),
		slog.Int("cycle", e.Cycle),
		slog.String("date", e.Date.String()),
		slog.String("field", e.Field),
		slog.String("old", e.OldValue),
		slog.String("new", e.NewValue))
	return nil
}
