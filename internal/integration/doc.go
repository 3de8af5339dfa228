// Package integration boots a real thermal-node and talks to it over the
// network.
package integration
