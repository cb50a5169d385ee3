package merger

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"pipeledger/internal/infrastructure"
	"pipeledger/internal/ledger"
)

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) { m.logger = logger }
}

// WithGapFill enables carry-forward filling of inventory tables before new
// rows are appended.
func WithGapFill(opts ledger.FillOptions) Option {
	return func(m *Merger) { m.gapFill = &opts }
}

// WithAudit replaces the audit sink.
func WithAudit(sink AuditSink) Option {
	return func(m *Merger) { m.audit = sink }
}

// WithMetrics records merge metrics.
func WithMetrics(metrics *infrastructure.MergeMetrics) Option {
	return func(m *Merger) { m.metrics = metrics }
}

// WithTracer wraps merges in spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Merger) { m.tracer = tracer }
}

// WithWorkers bounds the number of entities AcceptAll merges concurrently.
func WithWorkers(n int) Option {
	return func(m *Merger) {
		if n > 0 {
			m.workers = n
		}
	}
}
