// Package alarm contains the blink state machine that drives the alarm
// transducer and the red/green indicator once a temperature threshold has
// been crossed, plus the Actor type used to audit remote trigger/stop calls.
//
// The Controller is stepped from a single cooperative loop: Tick never
// blocks, performs at most one phase transition and is a no-op while the
// alarm is inactive.
package alarm
