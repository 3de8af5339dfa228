// Package wire renders published snapshots for the transports: the compact
// comma separated text of the original web endpoints (one decimal digit) and
// protobuf well-known types (structpb) shared by gRPC, the JSON endpoint and
// telemetry.
package wire
