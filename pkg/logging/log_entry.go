package logging

// LogEntry represents a structured log record with fields relevant to
// evolution runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run-specific fields
	RunID string // The run this entry belongs to
	Round int    // Evolution round, 0 when outside the loop
	Phase string // Pipeline phase name, empty when outside the pipeline

	// General structured data
	Fields map[string]interface{}
}
