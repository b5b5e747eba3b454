package session

import (
	"fmt"
	"time"

	"labelprint/internal/printing"
	"labelprint/internal/product"
)

// Item statuses written to the report. Failures use the error kind instead.
const (
	StatusRendered   = "rendered"
	StatusDispatched = "dispatched"
)

// Stages at which an item stopped.
const (
	StageResolve  = "resolve"
	StageRender   = "render"
	StageDispatch = "dispatch"
	StageDone     = "done"
)

// Outcome is the result of one SKU.
type Outcome struct {
	Position int
	SKU      product.SKU
	Stage    string
	Status   string
	Err      error
	CacheHit bool
	Artifact string
	Jobs     []printing.Job
}

// Failed reports whether the item hit an error at any stage.
func (o Outcome) Failed() bool { return o.Err != nil }

// Line formats the outcome as "SKU: status".
func (o Outcome) Line() string {
	return fmt.Sprintf("%s: %s", o.SKU, o.Status)
}

// Report collects the outcomes of one unit of work.
type Report struct {
	RunID      string
	Kind       string
	Name       string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
	Sheets     []string
	SheetErr   error
}

// Rendered counts items with a label artifact on disk, including those whose dispatch failed.
func (r Report) Rendered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Artifact != "" {
			n++
		}
	}
	return n
}

// Dispatched counts items accepted by every enabled destination.
func (r Report) Dispatched() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusDispatched {
			n++
		}
	}
	return n
}

// Failed counts items that hit an error.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}

// CacheHits counts items resolved from the product cache.
func (r Report) CacheHits() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.CacheHit {
			n++
		}
	}
	return n
}

// Summary is the closing line of the report.
func (r Report) Summary() string {
	return fmt.Sprintf("Summary: %d items, %d rendered, %d dispatched, %d failed (%d from cache)",
		len(r.Outcomes), r.Rendered(), r.Dispatched(), r.Failed(), r.CacheHits())
}
