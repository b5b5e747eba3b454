// Package productcache persists product records as one human-readable JSON
// file per SKU.
//
// Reads are soft: a missing, unreadable, or malformed file is a miss and the
// caller re-fetches. Writes go to a temp file that is renamed over the target
// so an interrupted write never leaves a partial entry. The cache also owns
// the session lock that keeps two interactive sessions off the same root.
package productcache
