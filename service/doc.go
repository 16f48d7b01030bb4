// Package service orchestrates the core components of the event counter:
// the event tree, the entry WAL, the change outbox and snapshots.
//
// It provides a clean API for increasing, reducing and querying counts,
// decoupled from transports like gRPC or the interactive shell.
package service
