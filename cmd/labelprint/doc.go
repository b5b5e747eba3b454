// Package main hosts the labelprint CLI entrypoint and command graph.
//
// Running labelprint with no arguments starts the interactive label session.
// The remaining commands cover one-shot batches, configuration scaffolding,
// and inspection of the product cache and run history. Configuration is
// resolved once per invocation and handed to the internal packages that do
// the actual work; keep new behavior in those packages and surface it here
// through commands or flags.
package main
