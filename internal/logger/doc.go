// Package logger wraps zap for the node and its tools.
//
// A global sugared logger with a console encoder is created at start-up and
// stored in contexts; every service and loop step pulls its logger from the
// context it was handed (FromContext), so names and key-value pairs attached
// upstream with WithName/WithKV travel with the call chain.
package logger
