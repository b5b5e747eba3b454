package printing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"labelprint/internal/config"
	"labelprint/internal/logging"
	"labelprint/internal/render"
	"labelprint/internal/services"
)

// Destination kinds.
const (
	KindSpooler = "spooler"
	KindCloud   = "cloud"
)

// Job records one label accepted by one destination.
type Job struct {
	ID          string
	SKU         string
	Kind        string
	Destination string
	Artifact    string
	AcceptedAt  time.Time
}

// Dispatcher sends a rendered label to its destinations.
type Dispatcher interface {
	Dispatch(ctx context.Context, lbl render.Label) ([]Job, error)
}

// NewDispatcher selects the dispatch strategy from the print toggles. A
// configured printer name alone never enables printing.
func NewDispatcher(cfg *config.Config, logger *slog.Logger) Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "printing")
	if cfg == nil {
		return disabled{}
	}

	var targets []Dispatcher
	if cfg.EnableNetworkPrint {
		targets = append(targets, NewSpooler(cfg.SpoolerBinary(), cfg.NetworkPrinterName, logger))
	}
	if cfg.EnableCloudPrint {
		targets = append(targets, NewCloud(CloudConfig{
			URL:            cfg.Zebra.BaseURL,
			APIKey:         cfg.ZebraAPIKey,
			Tenant:         cfg.ZebraAPISecret,
			PrinterSerial:  cfg.Zebra.PrinterSerial,
			TimeoutSeconds: cfg.Zebra.TimeoutSeconds,
		}, logger))
	}

	switch len(targets) {
	case 0:
		return disabled{}
	case 1:
		return targets[0]
	default:
		return Multi(targets)
	}
}

// Enabled reports whether d actually sends labels anywhere.
func Enabled(d Dispatcher) bool {
	if d == nil {
		return false
	}
	_, off := d.(disabled)
	return !off
}

type disabled struct{}

func (disabled) Dispatch(context.Context, render.Label) ([]Job, error) {
	return nil, services.Wrap(services.ErrDisabled, "printing", "dispatch", "printing is not enabled", nil)
}

// Multi sends each label to every destination in order. Jobs accepted before
// or after a failing destination are still returned alongside the error.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, lbl render.Label) ([]Job, error) {
	var (
		jobs []Job
		errs []error
	)
	for _, d := range m {
		accepted, err := d.Dispatch(ctx, lbl)
		jobs = append(jobs, accepted...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return jobs, services.Wrap(services.ErrDispatch, "printing", "dispatch", "one or more destinations failed", errors.Join(errs...))
	}
	return jobs, nil
}

func newJob(kind, destination string, lbl render.Label) Job {
	return Job{
		ID:          uuid.NewString(),
		SKU:         string(lbl.SKU),
		Kind:        kind,
		Destination: destination,
		Artifact:    lbl.Path,
		AcceptedAt:  time.Now().UTC(),
	}
}
