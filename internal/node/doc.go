// Package node wires the sensor reader, the alarm controller, the indicator
// policy and the snapshot publisher into a single cooperative loop.
//
// Every tick runs three non-blocking steps in a fixed order:
//
//  1. external requests (manual trigger/stop queued by the transports),
//  2. the alarm controller step,
//  3. the rate-limited sensor sample, which may update the indicator and
//     trigger the alarm.
//
// Only the loop goroutine touches the core components. Transports reach the
// core through the snapshot publisher (reads) and Submit (commands).
package node
