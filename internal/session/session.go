package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"labelprint/internal/archive"
	"labelprint/internal/history"
	"labelprint/internal/label"
	"labelprint/internal/logging"
	"labelprint/internal/metrics"
	"labelprint/internal/printing"
	"labelprint/internal/product"
	"labelprint/internal/render"
	"labelprint/internal/resolver"
	"labelprint/internal/services"
)

const promptRule = "------------------------------------------------------------"

// Run kinds recorded in history.
const (
	KindSingle  = "single"
	KindBatch   = "batch"
	KindRefresh = "refresh"
)

// Resolver looks up product records.
type Resolver interface {
	Resolve(ctx context.Context, sku product.SKU, opts ...resolver.ResolveOption) (resolver.Result, error)
}

// Renderer produces label artifacts.
type Renderer interface {
	Render(ctx context.Context, tpl *label.Template, rec product.Record) (render.Label, error)
	RenderSheet(ctx context.Context, name string, labels []render.Label) ([]string, error)
	SheetsEnabled() bool
}

// HistoryRecorder persists run outcomes.
type HistoryRecorder interface {
	StartRun(ctx context.Context, run history.Run) error
	RecordItem(ctx context.Context, runID string, item history.Item) error
	FinishRun(ctx context.Context, run history.Run) error
}

// Deps are the collaborators a session sequences. Resolver, Renderer and
// Template are required; the rest may be nil.
type Deps struct {
	Resolver   Resolver
	Renderer   Renderer
	Template   *label.Template
	Dispatcher printing.Dispatcher
	History    HistoryRecorder
	Archive    archive.Archiver
	Metrics    *metrics.LatencyTracker
	Logger     *slog.Logger
}

// Option adjusts a Session.
type Option func(*Session)

// WithObserver registers a state change callback.
func WithObserver(fn Observer) Option {
	return func(s *Session) { s.observer = fn }
}

// WithPrompt controls whether menus and "> " prompts are written. Reports are always written.
func WithPrompt(enabled bool) Option {
	return func(s *Session) { s.prompt = enabled }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is the interactive label loop. It is not safe for concurrent use.
type Session struct {
	deps     Deps
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger
	observer Observer
	prompt   bool
	now      func() time.Time
	state    State
}

// New constructs a session reading commands from in and writing prompts and reports to out.
func New(deps Deps, in io.Reader, out io.Writer, opts ...Option) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = printing.NewDispatcher(nil, logger)
	}
	if deps.Archive == nil {
		deps.Archive = archive.Noop{}
	}
	if out == nil {
		out = io.Discard
	}
	s := &Session{
		deps:   deps,
		in:     in,
		out:    out,
		logger: logging.NewComponentLogger(logger, "session"),
		prompt: true,
		now:    time.Now,
		state:  Idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State { return s.state }

func (s *Session) setState(next State) {
	prev := s.state
	if prev == next {
		return
	}
	s.state = next
	s.logger.Debug("session state changed",
		logging.String(logging.FieldEventType, "state_changed"),
		logging.String("from", prev.String()),
		logging.String(logging.FieldState, next.String()))
	if s.observer != nil {
		s.observer(prev, next)
	}
}

// Run reads commands until the user quits, input ends, or ctx is cancelled.
// Quitting and end of input return nil; cancellation returns ctx.Err().
func (s *Session) Run(ctx context.Context) error {
	lines, stop := s.readLines()
	defer stop()

	s.setState(AwaitingInput)
	for {
		s.printMenu()
		input, ok, err := s.next(ctx, lines)
		if err != nil {
			return err
		}
		if !ok {
			s.setState(Exit)
			return nil
		}

		switch strings.ToUpper(input) {
		case "":
			continue
		case "Q":
			s.setState(Exit)
			return nil
		case "F":
			s.printf("Enter filename:\n")
			path, ok, err := s.next(ctx, lines)
			if err != nil {
				return err
			}
			if !ok {
				s.setState(Exit)
				return nil
			}
			s.runBatchFile(ctx, path)
		case "R":
			s.printf("Enter SKU to refresh:\n")
			sku, ok, err := s.next(ctx, lines)
			if err != nil {
				return err
			}
			if !ok {
				s.setState(Exit)
				return nil
			}
			if sku != "" {
				s.process(ctx, KindRefresh, sku, []string{sku}, true)
			}
		default:
			s.process(ctx, KindSingle, input, []string{input}, false)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		s.setState(AwaitingInput)
	}
}

// ProcessBatch runs every SKU through the pipeline and writes the report.
// name labels the run and stems the sheet file names.
func (s *Session) ProcessBatch(ctx context.Context, name string, skus []string) Report {
	return s.process(ctx, KindBatch, name, skus, false)
}

// RefreshBatch is ProcessBatch with every SKU re-fetched from the product source.
func (s *Session) RefreshBatch(ctx context.Context, name string, skus []string) Report {
	return s.process(ctx, KindRefresh, name, skus, true)
}

func (s *Session) runBatchFile(ctx context.Context, path string) {
	path = strings.TrimSpace(path)
	skus, err := ReadBatchFile(path)
	if err != nil {
		logging.WarnWithContext(s.logger, "batch file unreadable", "batch_file_unreadable",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no labels printed for this batch"),
			logging.String(logging.FieldErrorHint, "check the file path and permissions"))
		s.printf("Error: %v\n", err)
		return
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s.process(ctx, KindBatch, stem, skus, false)
}

func (s *Session) process(ctx context.Context, kind, name string, raw []string, refresh bool) Report {
	report := Report{
		RunID:     uuid.NewString(),
		Kind:      kind,
		Name:      strings.TrimSpace(name),
		StartedAt: s.now().UTC(),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, s.logger)

	skus := make([]product.SKU, 0, len(raw))
	for _, r := range raw {
		if sku := product.NormalizeSKU(r); sku.Valid() {
			skus = append(skus, sku)
		}
	}

	s.recordStart(ctx, logger, report, len(skus))
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("kind", kind),
		logging.String("name", report.Name),
		logging.Int("items", len(skus)))

	var labels []render.Label
	for i, sku := range skus {
		if ctx.Err() != nil {
			break
		}
		if len(skus) > 1 {
			s.printf("Processing: %s...\n", sku)
		}
		outcome, lbl := s.processItem(ctx, i, sku, refresh)
		if lbl.Path != "" {
			labels = append(labels, lbl)
		}
		report.Outcomes = append(report.Outcomes, outcome)
		s.recordItem(ctx, logger, report.RunID, outcome)
	}

	if s.deps.Renderer.SheetsEnabled() && len(labels) > 0 && ctx.Err() == nil {
		s.renderSheets(ctx, logger, &report, labels)
	}

	report.FinishedAt = s.now().UTC()
	s.setState(Reporting)
	s.writeReport(report)
	s.recordFinish(ctx, logger, report)
	s.deps.Metrics.Log(logger)

	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("rendered", report.Rendered()),
		logging.Int("dispatched", report.Dispatched()),
		logging.Int("failed", report.Failed()))
	return report
}

func (s *Session) processItem(ctx context.Context, position int, sku product.SKU, refresh bool) (Outcome, render.Label) {
	ctx = services.WithSKU(ctx, sku.String())
	logger := logging.WithContext(ctx, s.logger)
	outcome := Outcome{Position: position, SKU: sku}

	s.setState(Resolving)
	done := s.deps.Metrics.Start(metrics.StepResolve)
	res, err := s.deps.Resolver.Resolve(ctx, sku, resolver.WithRefresh(refresh))
	done()
	if err != nil {
		return s.fail(logger, outcome, StageResolve, err), render.Label{}
	}
	outcome.CacheHit = res.CacheHit

	s.setState(Rendering)
	done = s.deps.Metrics.Start(metrics.StepRender)
	lbl, err := s.deps.Renderer.Render(ctx, s.deps.Template, res.Record)
	done()
	if err != nil {
		return s.fail(logger, outcome, StageRender, err), render.Label{}
	}
	outcome.Artifact = lbl.Path
	outcome.Status = StatusRendered
	outcome.Stage = StageDone
	s.archive(ctx, logger, lbl.Path, lbl.Image)

	if !printing.Enabled(s.deps.Dispatcher) {
		return outcome, lbl
	}

	s.setState(Dispatching)
	done = s.deps.Metrics.Start(metrics.StepDispatch)
	jobs, err := s.deps.Dispatcher.Dispatch(ctx, lbl)
	done()
	outcome.Jobs = jobs
	if err != nil {
		return s.fail(logger, outcome, StageDispatch, err), lbl
	}
	outcome.Status = StatusDispatched
	return outcome, lbl
}

func (s *Session) fail(logger *slog.Logger, outcome Outcome, stage string, err error) Outcome {
	outcome.Stage = stage
	outcome.Err = err
	outcome.Status = services.Kind(err)
	if outcome.Status == "" {
		outcome.Status = "Error"
	}
	logging.WarnWithContext(logger, "label failed", "item_failed",
		logging.String("stage", stage),
		logging.String(logging.FieldErrorKind, outcome.Status),
		logging.Error(err),
		logging.String(logging.FieldImpact, "label skipped, batch continues"),
		logging.String(logging.FieldErrorHint, hintFor(err)))
	return outcome
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "check the SKU exists in Shopify"
	case errors.Is(err, services.ErrAuth):
		return "check shopify_api_key and shopify_api_secret"
	case errors.Is(err, services.ErrTemplate):
		return "check the label template placeholders"
	case errors.Is(err, services.ErrRenderService):
		return "check render.base_url is reachable"
	case errors.Is(err, services.ErrDispatch):
		return "check the printer name and cloud print settings"
	default:
		return "re-run the SKU once the service is reachable"
	}
}

func (s *Session) renderSheets(ctx context.Context, logger *slog.Logger, report *Report, labels []render.Label) {
	name := report.Name
	if name == "" {
		name = labels[0].SKU.String()
	}
	done := s.deps.Metrics.Start(metrics.StepSheet)
	paths, err := s.deps.Renderer.RenderSheet(ctx, name, labels)
	done()
	report.Sheets = paths
	report.SheetErr = err
	if err != nil {
		logging.WarnWithContext(logger, "sheet render failed", "sheet_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "individual labels are unaffected"),
			logging.String(logging.FieldErrorHint, "check render.base_url is reachable"))
	}
	for _, path := range paths {
		s.archive(ctx, logger, path, nil)
	}
}

func (s *Session) archive(ctx context.Context, logger *slog.Logger, path string, data []byte) {
	if _, noop := s.deps.Archive.(archive.Noop); noop || path == "" {
		return
	}
	if data == nil {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			logging.WarnWithContext(logger, "archive read failed", "archive_failed",
				logging.String("path", path), logging.Error(err))
			return
		}
	}
	done := s.deps.Metrics.Start(metrics.StepArchive)
	uri, err := s.deps.Archive.Store(ctx, filepath.Base(path), data, s.now())
	done()
	if err != nil {
		logging.WarnWithContext(logger, "archive upload failed", "archive_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "label kept locally only"),
			logging.String(logging.FieldErrorHint, "check archive bucket and AWS credentials"))
		return
	}
	logger.Debug("label archived",
		logging.String(logging.FieldEventType, "label_archived"),
		logging.String("uri", uri))
}

func (s *Session) writeReport(report Report) {
	for _, o := range report.Outcomes {
		s.printf("%s\n", o.Line())
	}
	for _, path := range report.Sheets {
		s.printf("Rendered PDF: %s\n", path)
	}
	if report.SheetErr != nil {
		s.printf("Sheet render failed: %s\n", services.Kind(report.SheetErr))
	}
	if len(report.Outcomes) > 1 {
		s.printf("%s\n", report.Summary())
	}
}

func (s *Session) printMenu() {
	if !s.prompt {
		return
	}
	s.printf("%s\n", promptRule)
	s.printf("Type a SKU to print a single label.\n")
	s.printf("Enter 'F'+'Enter' to load a TXT file of SKUs and print multiple labels at once.\n")
	s.printf("Enter 'R'+'Enter' to refresh a SKU from Shopify and print its label.\n")
	s.printf("Enter 'Q'+'Enter' or 'Ctrl'+'C' to quit.\n")
}

func (s *Session) next(ctx context.Context, lines <-chan string) (string, bool, error) {
	if s.prompt {
		s.printf("> ")
	}
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-lines:
		return strings.TrimSpace(line), ok, nil
	}
}

// readLines scans input on its own goroutine so a blocked read never delays cancellation.
func (s *Session) readLines() (<-chan string, func()) {
	lines := make(chan string)
	quit := make(chan struct{})
	if s.in == nil {
		close(lines)
		return lines, func() {}
	}
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-quit:
				return
			}
		}
	}()
	return lines, func() { close(quit) }
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
