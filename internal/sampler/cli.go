package sampler

import (
	"os"
)

// ShowHelp prints usage information for the sampling tool.
func ShowHelp() {
	os.Stdout.WriteString(`learnstreak sample-activity
===========================

Generates synthetic learner histories, submits them to a running server and
checks every summary for consistency.

Usage:
  sample-activity [options]

Options:
  -url string         Base URL of the service (default "http://localhost:9080")
  -subjects int       Number of synthetic learners (default 1000)
  -days int           Days of history per learner (default 120)
  -reference string   Reference date YYYY-MM-DD (default: today, UTC)
  -batch int          Learners per batch request (default 50)
  -workers int        Concurrent batch requests (default CPU cores)
  -timeout duration   HTTP request timeout (default 30s)
  -seed int           Generator seed (default 1)
  -output string      Write generated histories to this JSON file
  -format string      Log format: text or json (default "text")
  -verbose            Log every violation
  -help               Show this help message

Examples:
  sample-activity -subjects 5000 -workers 16
  sample-activity -reference 2024-12-31 -output histories.json
`)
}
