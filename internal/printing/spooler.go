package printing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"labelprint/internal/logging"
	"labelprint/internal/render"
	"labelprint/internal/services"
)

// CommandRunner runs an external command to completion.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Spooler submits label files to a local print queue with lpr.
type Spooler struct {
	binary  string
	printer string
	run     CommandRunner
	logger  *slog.Logger
}

// NewSpooler constructs a spooler dispatcher for the named queue.
func NewSpooler(binary, printer string, logger *slog.Logger) *Spooler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(binary) == "" {
		binary = "lpr"
	}
	return &Spooler{
		binary:  binary,
		printer: strings.TrimSpace(printer),
		run:     defaultCommandRunner,
		logger:  logger,
	}
}

// WithRunner replaces the command runner, for tests.
func (s *Spooler) WithRunner(run CommandRunner) *Spooler {
	if run != nil {
		s.run = run
	}
	return s
}

// Dispatch runs `lpr -P <printer> <artifact>`.
func (s *Spooler) Dispatch(ctx context.Context, lbl render.Label) ([]Job, error) {
	if s.printer == "" {
		return nil, services.Wrap(services.ErrDispatch, "spooler", "dispatch", "no printer name configured", nil)
	}
	if strings.TrimSpace(lbl.Path) == "" {
		return nil, services.Wrap(services.ErrDispatch, "spooler", "dispatch", "label has no artifact file", nil)
	}
	if err := s.run(ctx, s.binary, "-P", s.printer, lbl.Path); err != nil {
		return nil, services.Wrap(services.ErrDispatch, "spooler", "dispatch", fmt.Sprintf("queue %s", s.printer), err)
	}

	job := newJob(KindSpooler, s.printer, lbl)
	s.logger.Info("label sent to print queue",
		logging.SKU(job.SKU),
		logging.String(logging.FieldEventType, "print_spooled"),
		logging.String("printer", s.printer),
		logging.String("job_id", job.ID))
	return []Job{job}, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
