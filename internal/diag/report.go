package diag

import (
	"encoding/json"
	"time"
)

// Severity grades a report.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Report describes one failure with enough context to debug it later.
type Report struct {
	Title      string
	Operation  string
	Identifier string
	Path       string
	Detail     string
	Severity   Severity
	Params     map[string]string
	OccurredAt time.Time
}

// Sink accepts reports. Implementations must not block.
type Sink interface {
	Report(Report)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Report)

func (f SinkFunc) Report(r Report) { f(r) }

// Discard drops every report.
var Discard Sink = SinkFunc(func(Report) {})

func (r Report) params() string {
	p := make(map[string]string, len(r.Params)+2)
	for k, v := range r.Params {
		p[k] = v
	}
	if r.Identifier != "" {
		p["identifier"] = r.Identifier
	}
	if r.Path != "" {
		p["path"] = r.Path
	}
	if len(p) == 0 {
		return ""
	}
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}
