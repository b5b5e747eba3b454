// Package metrics tracks per-step pipeline latency quantiles with DDSketch.
package metrics

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"

	"labelprint/internal/logging"
)

// Pipeline steps recorded by the session.
const (
	StepResolve  = "resolve"
	StepRender   = "render"
	StepDispatch = "dispatch"
	StepArchive  = "archive"
	StepSheet    = "sheet"
)

// DefaultRelativeAccuracy gives quantile estimates within 1%.
const DefaultRelativeAccuracy = 0.01

// LatencyTracker tracks latency quantiles per step.
type LatencyTracker struct {
	mu               sync.Mutex
	sketches         map[string]*ddsketch.DDSketch
	relativeAccuracy float64
}

// NewLatencyTracker creates a tracker. relativeAccuracy <= 0 uses DefaultRelativeAccuracy.
func NewLatencyTracker(relativeAccuracy float64) *LatencyTracker {
	if relativeAccuracy <= 0 || relativeAccuracy >= 1 {
		relativeAccuracy = DefaultRelativeAccuracy
	}
	return &LatencyTracker{
		sketches:         make(map[string]*ddsketch.DDSketch),
		relativeAccuracy: relativeAccuracy,
	}
}

// Record adds a duration sample for step, in milliseconds.
func (lt *LatencyTracker) Record(step string, duration time.Duration) {
	if lt == nil {
		return
	}
	lt.mu.Lock()
	defer lt.mu.Unlock()

	sketch, exists := lt.sketches[step]
	if !exists {
		var err error
		sketch, err = ddsketch.LogUnboundedDenseDDSketch(lt.relativeAccuracy)
		if err != nil {
			sketch, _ = ddsketch.NewDefaultDDSketch(lt.relativeAccuracy)
		}
		lt.sketches[step] = sketch
	}
	_ = sketch.Add(float64(duration.Microseconds()) / 1000.0)
}

// Start returns a function that records the time elapsed since Start when called.
func (lt *LatencyTracker) Start(step string) func() {
	start := time.Now()
	return func() { lt.Record(step, time.Since(start)) }
}

// Stats holds summary statistics for one step, in milliseconds.
type Stats struct {
	Step  string
	Count int64
	Min   float64
	P50   float64
	P90   float64
	P99   float64
	Max   float64
}

// GetStats returns statistics for step.
func (lt *LatencyTracker) GetStats(step string) (Stats, error) {
	if lt == nil {
		return Stats{}, fmt.Errorf("no data for step: %s", step)
	}
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return lt.statsLocked(step)
}

// AllStats returns statistics for every recorded step, sorted by step name.
func (lt *LatencyTracker) AllStats() []Stats {
	if lt == nil {
		return nil
	}
	lt.mu.Lock()
	defer lt.mu.Unlock()

	steps := make([]string, 0, len(lt.sketches))
	for step := range lt.sketches {
		steps = append(steps, step)
	}
	sort.Strings(steps)

	stats := make([]Stats, 0, len(steps))
	for _, step := range steps {
		if s, err := lt.statsLocked(step); err == nil {
			stats = append(stats, s)
		}
	}
	return stats
}

// Log writes one debug line per step.
func (lt *LatencyTracker) Log(logger *slog.Logger) {
	if logger == nil {
		return
	}
	for _, s := range lt.AllStats() {
		logger.Debug("step latency",
			logging.String(logging.FieldEventType, "step_latency"),
			logging.String("step", s.Step),
			logging.Int64("count", s.Count),
			logging.String("p50_ms", fmt.Sprintf("%.2f", s.P50)),
			logging.String("p90_ms", fmt.Sprintf("%.2f", s.P90)),
			logging.String("p99_ms", fmt.Sprintf("%.2f", s.P99)),
			logging.String("max_ms", fmt.Sprintf("%.2f", s.Max)))
	}
}

func (lt *LatencyTracker) statsLocked(step string) (Stats, error) {
	sketch, exists := lt.sketches[step]
	if !exists {
		return Stats{}, fmt.Errorf("no data for step: %s", step)
	}
	count := sketch.GetCount()
	if count == 0 {
		return Stats{Step: step}, nil
	}

	minValue, _ := sketch.GetMinValue()
	p50, _ := sketch.GetValueAtQuantile(0.50)
	p90, _ := sketch.GetValueAtQuantile(0.90)
	p99, _ := sketch.GetValueAtQuantile(0.99)
	maxValue, _ := sketch.GetMaxValue()

	return Stats{
		Step:  step,
		Count: int64(count),
		Min:   minValue,
		P50:   p50,
		P90:   p90,
		P99:   p99,
		Max:   maxValue,
	}, nil
}

// String formats the statistics on one line.
func (s Stats) String() string {
	if s.Count == 0 {
		return fmt.Sprintf("%s: no data", s.Step)
	}
	return fmt.Sprintf("%s (n=%d): p50=%.0fms p90=%.0fms p99=%.0fms max=%.0fms",
		s.Step, s.Count, s.P50, s.P90, s.P99, s.Max)
}
