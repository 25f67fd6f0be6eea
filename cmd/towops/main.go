package main

import (
	"os"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
