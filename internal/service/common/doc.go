// Package common holds helpers shared by several services.
//
// It provides a lightweight ThermalService client wrapper with timeouts and
// utilities to detect the current system actor (hostname/username) that is
// attached to alarm commands.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
