// Package services defines shared utilities consumed by the pipeline stages and
// their external integrations (Shopify, Labelary, print destinations).
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and SKUs for logging.
//   - Structured error markers plus the Wrap helper, and Kind, which maps any
//     pipeline error to the label shown in the session report.
//
// Integrations live in subpackages and return errors built with Wrap so the
// session can isolate per-item failures without string matching.
package services
