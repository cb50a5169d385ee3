package ingest

import (
	"context"
	"log/slog"

	apperrors "pipeledger/internal/errors"
	"pipeledger/internal/infrastructure"
	"pipeledger/internal/merger"
	"pipeledger/pkg/contracts/domain"
)

// BulletinMerger merges one bulletin.
type BulletinMerger interface {
	Accept(ctx context.Context, b domain.Bulletin) (merger.Result, error)
}

// Runner merges pending inbox files in publish order.
type Runner struct {
	discovery *Discovery
	reader    *Reader
	merger    BulletinMerger
	logger    *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(discovery *Discovery, reader *Reader, m BulletinMerger, logger *slog.Logger) *Runner {
	return &Runner{
		discovery: discovery,
		reader:    reader,
		merger:    m,
		logger:    logger.With(slog.String("component", "ingest_runner")),
	}
}

// CatchUp merges every file published after its source's watermark. Files
// that cannot be parsed are logged and skipped. A merge error stops the run
// so the watermark stays before the failing bulletin.
func (r *Runner) CatchUp(ctx context.Context) (merger.Result, error) {
	var total merger.Result
	ctx = infrastructure.EnsureTraceID(ctx)

	files, err := r.discovery.Pending(ctx)
	if err != nil {
		return total, err
	}
	if len(files) == 0 {
		r.logger.DebugContext(ctx, "inbox up to date")
		return total, nil
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		b, err := r.reader.Read(f)
		if err != nil {
			if apperrors.TypeOf(err) == apperrors.ErrTypeValidation {
				r.logger.ErrorContext(ctx, "bulletin file rejected",
					slog.String("file", f.Name),
					slog.String("error", err.Error()))
				continue
			}
			return total, err
		}

		res, err := r.merger.Accept(ctx, b)
		total.Add(res)
		if err != nil {
			r.logger.ErrorContext(ctx, "bulletin merge failed",
				slog.String("file", f.Name),
				slog.String("error", err.Error()))
			return total, err
		}
	}

	r.logger.InfoContext(ctx, "inbox catch-up complete",
		slog.Int("files", len(files)),
		slog.Int("cells_changed", total.CellsChanged),
		slog.Int("cycles_rejected", len(total.Rejected)))
	return total, nil
}
