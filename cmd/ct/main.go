// Command ct browses catalog change reports as a collapsible hierarchy,
// filters them down to the rows changed since a cutoff and exports the
// result.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A project-local .env may set CT_* variables; its absence is fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
