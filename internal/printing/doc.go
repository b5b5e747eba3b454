// Package printing hands rendered labels to a print destination.
//
// NewDispatcher inspects the configuration once and returns the strategy the
// session uses for its lifetime: a disabled dispatcher when neither print
// toggle is on, a local spooler (lpr), the Zebra cloud endpoint, or both.
// Success means the destination accepted the job; completion is not tracked.
package printing
