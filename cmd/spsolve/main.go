// Command spsolve is the CLI entry point.
package main

import "github.com/edgesp/spsolve/cmd"

func main() {
	cmd.Execute()
}
