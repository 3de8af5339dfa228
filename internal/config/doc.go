// Package config defines the node settings and provides helpers to load,
// validate and save them in YAML format.
//
// Only transport, logging, sensor source and telemetry settings live here.
// Alarm thresholds and blink timings are compile-time constants and cannot be
// changed by configuration.
package config
