// Package snapshot holds the latest committed frame, statistics and node
// status for readers outside the sampling loop (HTTP and gRPC handlers,
// telemetry). The loop replaces whole values; readers always get a
// consistent copy and never wait longer than that copy.
package snapshot
