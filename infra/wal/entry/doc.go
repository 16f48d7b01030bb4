// Package entry implements the ingress Write-Ahead Log (WAL).
// Every increase or reduce request is recorded here before it is applied
// to the event tree, so the tree can be rebuilt after a crash by replaying
// the log on top of the latest snapshot.
package entry
