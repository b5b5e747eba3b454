// Package history keeps a local SQLite ledger of session runs and the outcome
// of every SKU processed in them.
//
// Each single-SKU entry or batch file is a run; each SKU within it is an item
// recording the stage it reached, the error kind if it failed, the artifact
// path, and any print job IDs. The ledger backs the `labelprint history`
// command and is never consulted by the pipeline itself.
package history
