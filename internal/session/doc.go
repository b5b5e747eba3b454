// Package session drives the interactive label loop.
//
// A Session reads commands from its input: a bare SKU prints one label, F
// followed by a path prints every SKU in a batch file, R followed by a SKU
// re-fetches the product before printing, and Q (or end of input) quits.
// Each unit of work moves through Resolving, Rendering and, when a print
// destination is enabled, Dispatching before the outcomes are reported and
// the session returns to AwaitingInput.
//
// Items are processed one at a time. A failure is recorded against its SKU
// with the error kind from services.Kind and the batch moves on; nothing that
// happens to a single item ends the session. Run history, S3 archiving and
// latency tracking are side sinks: their failures are logged and never change
// an item's outcome.
package session
