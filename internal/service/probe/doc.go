// Package probe implements thermal-probe, the command-line client of a
// running node.
//
// It reads frames, statistics and health over gRPC and sends manual alarm
// commands tagged with the local hostname and user.
package probe
