// Package server runs thermal-node: it opens the sensor, starts the
// cooperative loop and serves the node over gRPC and HTTP until the context
// is canceled.
package server
