// Package preflight provides readiness checks run before the interactive
// session starts.
//
// Directory access and the label template are always checked. The spooler
// binary is checked when network printing is enabled, and cloud print and
// archive settings when those features are on. Shopify credentials are
// verified with a cheap query when a pinger is supplied; that check is
// advisory because cached products still print while the shop is unreachable.
// A failed required check aborts startup.
package preflight
