package session

import (
	"context"
	"log/slog"

	"labelprint/internal/history"
	"labelprint/internal/logging"
)

func (s *Session) recordStart(ctx context.Context, logger *slog.Logger, report Report, total int) {
	if s.deps.History == nil {
		return
	}
	err := s.deps.History.StartRun(ctx, history.Run{
		ID:        report.RunID,
		Kind:      report.Kind,
		Source:    report.Name,
		StartedAt: report.StartedAt,
		Total:     total,
	})
	if err != nil {
		s.warnHistory(logger, err)
	}
}

func (s *Session) recordItem(ctx context.Context, logger *slog.Logger, runID string, o Outcome) {
	if s.deps.History == nil {
		return
	}
	item := history.Item{
		Position:   o.Position,
		SKU:        o.SKU.String(),
		Stage:      o.Stage,
		Artifact:   o.Artifact,
		CacheHit:   o.CacheHit,
		RecordedAt: s.now().UTC(),
	}
	if o.Err != nil {
		item.ErrorKind = o.Status
		item.Error = o.Err.Error()
	}
	for _, job := range o.Jobs {
		item.JobIDs = append(item.JobIDs, job.ID)
	}
	// The item in flight when the session is cancelled is still recorded.
	if err := s.deps.History.RecordItem(context.WithoutCancel(ctx), runID, item); err != nil {
		s.warnHistory(logger, err)
	}
}

func (s *Session) recordFinish(ctx context.Context, logger *slog.Logger, report Report) {
	if s.deps.History == nil {
		return
	}
	// Cancellation must not lose the summary of items already processed.
	ctx = context.WithoutCancel(ctx)
	err := s.deps.History.FinishRun(ctx, history.Run{
		ID:         report.RunID,
		Kind:       report.Kind,
		Source:     report.Name,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Total:      len(report.Outcomes),
		Rendered:   report.Rendered(),
		Dispatched: report.Dispatched(),
		Failed:     report.Failed(),
		CacheHits:  report.CacheHits(),
	})
	if err != nil {
		s.warnHistory(logger, err)
	}
}

func (s *Session) warnHistory(logger *slog.Logger, err error) {
	logging.WarnWithContext(logger, "history write failed", "history_failed",
		logging.Error(err),
		logging.String(logging.FieldImpact, "run not fully recorded in history"),
		logging.String(logging.FieldErrorHint, "check the state directory is writable"))
}
