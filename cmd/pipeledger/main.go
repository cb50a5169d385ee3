// Command pipeledger merges pipeline bulletins into per-entity ledgers and
// serves projections over them.
package main

import (
	"os"

	"pipeledger/internal/infrastructure"
)

func main() {
	err := rootCmd.Execute()
	infrastructure.CloseLogFile()
	if err != nil {
		os.Exit(1)
	}
}
