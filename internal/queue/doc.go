// Package queue implements the persistent job queue: SQLite-backed job
// records, the queued→running→{succeeded,failed} state machine, and the
// fixed-size worker pool that executes stage handlers.
package queue
