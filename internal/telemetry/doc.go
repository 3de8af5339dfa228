// Package telemetry publishes samples and alarm events to an MQTT broker.
//
// Publishing never blocks the loop: messages go through a bounded queue to a
// single worker that owns all client calls, a full queue drops the message,
// and delivery failures are only logged.
package telemetry
