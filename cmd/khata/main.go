// Command khata is the shop ledger from the terminal.
package main

import (
	"os"

	"github.com/dvloznov/kitab-khata/cmd/khata/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
