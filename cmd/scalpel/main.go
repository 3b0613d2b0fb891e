package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Run functions report their own errors; this catches flag and
		// usage failures surfaced by cobra itself.
		os.Exit(1)
	}
}
