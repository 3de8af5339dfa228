// Command thermal-node samples the thermal sensor, drives the indicator and
// alarm signals and serves the latest snapshot over gRPC and HTTP.
package main

import "github.com/oshokin/thermal-sentinel/cmd/thermal-node/cmd"

func main() {
	cmd.Execute()
}
