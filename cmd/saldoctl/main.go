// Command saldoctl runs maintenance tasks and prints reports from the terminal.
package main

import (
	"os"

	"saldo/cmd/saldoctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
