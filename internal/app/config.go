package app

import "time"

// Output formats understood by Run.
const (
	FormatJSONL = "jsonl"
	FormatJSON  = "json"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Inputs are URLs given on the command line. InputPath, when set, names
	// a file of additional URLs, one per line.
	Inputs     []string
	InputPath  string
	OutputPath string
	Format     string

	// Fetching
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Concurrency  int

	// Behavior
	FailFast bool
	Verbose  bool
}
