package trace

import (
	"time"
)

// SpanOptions holds options for creating a span.
type SpanOptions struct {
	Name     string
	ID       string
	Metadata map[string]any
	Input    any
	Level    string
}

// Span represents a span within a trace. One span bounds one agent call.
type Span struct {
	client        *Client
	traceID       string
	id            string
	name          string
	metadata      map[string]any
	input         any
	output        any
	level         string
	statusMessage string
	startTime     time.Time
	endTime       *time.Time
	ended         bool
}

// ID returns the span ID.
func (s *Span) ID() string {
	return s.id
}

// TraceID returns the trace ID.
func (s *Span) TraceID() string {
	return s.traceID
}

func (s *Span) sendCreate() {
	if !s.client.Enabled() {
		return
	}

	s.client.addEvent(map[string]any{
		"type": "span-create",
		"body": map[string]any{
			"id":        s.id,
			"traceId":   s.traceID,
			"name":      s.name,
			"metadata":  s.metadata,
			"input":     s.input,
			"level":     s.level,
			"startTime": s.startTime.Format(time.RFC3339Nano),
		},
	})
}

// SpanEndOptions holds options for ending a span.
type SpanEndOptions struct {
	Output any
	// Err marks the span as failed. The span closes with level ERROR and the
	// error text as status message.
	Err error
}

// End ends the span. Subsequent calls are no-ops.
func (s *Span) End(opts *SpanEndOptions) {
	if s.ended {
		return
	}

	s.ended = true
	now := time.Now().UTC()
	s.endTime = &now

	if opts != nil {
		if opts.Output != nil {
			s.output = opts.Output
		}
		if opts.Err != nil {
			s.level = "ERROR"
			s.statusMessage = opts.Err.Error()
		}
	}

	if s.client.Enabled() {
		body := map[string]any{
			"id":      s.id,
			"traceId": s.traceID,
			"output":  s.output,
			"level":   s.level,
			"endTime": s.endTime.Format(time.RFC3339Nano),
		}
		if s.statusMessage != "" {
			body["statusMessage"] = s.statusMessage
		}

		s.client.addEvent(map[string]any{
			"type": "span-update",
			"body": body,
		})
	}
}
