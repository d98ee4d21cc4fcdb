package trace

import (
	"time"

	"github.com/google/uuid"
)

// Trace represents one end-to-end invocation recorded at the backend.
type Trace struct {
	client    *Client
	id        string
	name      string
	sessionID string
	metadata  map[string]any
	tags      []string
	input     any
	output    any
	startTime time.Time
	endTime   *time.Time
	ended     bool
}

// ID returns the trace ID.
func (t *Trace) ID() string {
	return t.id
}

// Name returns the trace name.
func (t *Trace) Name() string {
	return t.name
}

func (t *Trace) sendCreate() {
	if !t.client.Enabled() {
		return
	}

	t.client.addEvent(map[string]any{
		"type": "trace-create",
		"body": map[string]any{
			"id":        t.id,
			"name":      t.name,
			"sessionId": t.sessionID,
			"metadata":  t.metadata,
			"tags":      t.tags,
			"input":     t.input,
			"timestamp": t.startTime.Format(time.RFC3339Nano),
		},
	})
}

// Span creates a span within this trace.
func (t *Trace) Span(opts SpanOptions) *Span {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}

	span := &Span{
		client:    t.client,
		traceID:   t.id,
		id:        opts.ID,
		name:      opts.Name,
		metadata:  opts.Metadata,
		input:     opts.Input,
		level:     opts.Level,
		startTime: time.Now().UTC(),
	}

	if span.metadata == nil {
		span.metadata = make(map[string]any)
	}
	if span.level == "" {
		span.level = "DEFAULT"
	}

	span.sendCreate()
	return span
}

// TraceEndOptions holds options for ending a trace.
type TraceEndOptions struct {
	Output any
}

// End ends the trace.
func (t *Trace) End(opts *TraceEndOptions) {
	if t.ended {
		return
	}

	t.ended = true
	now := time.Now().UTC()
	t.endTime = &now

	if opts != nil && opts.Output != nil {
		t.output = opts.Output
	}

	if t.client.Enabled() {
		t.client.addEvent(map[string]any{
			"type": "trace-update",
			"body": map[string]any{
				"id":     t.id,
				"output": t.output,
			},
		})
	}
}

// Score adds a score to this trace.
func (t *Trace) Score(name string, value float64, opts *ScoreAddOptions) {
	scoreOpts := ScoreOptions{
		TraceID: t.id,
		Name:    name,
		Value:   value,
	}

	if opts != nil {
		scoreOpts.DataType = opts.DataType
		scoreOpts.Comment = opts.Comment
	}

	t.client.Score(scoreOpts)
}

// ScoreAddOptions holds additional options for adding a score.
type ScoreAddOptions struct {
	DataType string
	Comment  string
}
