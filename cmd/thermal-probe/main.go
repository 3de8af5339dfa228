// Command thermal-probe queries a running thermal-node and sends manual
// alarm commands.
package main

import "github.com/oshokin/thermal-sentinel/cmd/thermal-probe/cmd"

func main() {
	cmd.Execute()
}
