package observe

import (
	"sync"

	"github.com/di37/climate-agent-observability/internal/trace"
)

// IDs is the correlation pair for one invocation. Zero-value IDs are the
// sentinel for "tracing disabled"; callers must not fail on them.
type IDs struct {
	TraceID       string
	ObservationID string
}

// Disabled reports whether these are sentinel identifiers.
func (ids IDs) Disabled() bool {
	return ids.TraceID == "" && ids.ObservationID == ""
}

// Backend is the trace backend boundary. Implementations must tolerate being
// unreachable: degrade, never surface errors into the caller.
type Backend interface {
	// StartSpan opens a trace/span pair around one invocation. ok=false
	// means tracing is unavailable and the returned IDs are sentinels.
	StartSpan(name, input string, metadata map[string]any) (ids IDs, ok bool)

	// EndSpan closes the span (and its trace) with the output, or with an
	// error marker when err is non-nil. Sentinel IDs are ignored.
	EndSpan(ids IDs, output string, err error)

	// SubmitScore attaches a score to the trace/span pair. Sentinel IDs are
	// ignored.
	SubmitScore(ids IDs, name string, value float64, comment string)
}

// TraceBackend adapts the trace client to the Backend boundary. It keeps the
// open trace/span pairs keyed by observation ID so EndSpan can correlate by
// identifiers alone.
type TraceBackend struct {
	client *trace.Client

	mu   sync.Mutex
	open map[string]openSpan
}

type openSpan struct {
	trace *trace.Trace
	span  *trace.Span
}

// NewTraceBackend wraps a trace client. A nil or disabled client yields a
// backend that reports tracing unavailable on every call.
func NewTraceBackend(client *trace.Client) *TraceBackend {
	return &TraceBackend{
		client: client,
		open:   make(map[string]openSpan),
	}
}

func (b *TraceBackend) StartSpan(name, input string, metadata map[string]any) (IDs, bool) {
	if !b.client.Enabled() {
		return IDs{}, false
	}

	tr := b.client.Trace(trace.TraceOptions{
		Name:     name,
		Input:    map[string]any{"input": input},
		Metadata: metadata,
	})
	sp := tr.Span(trace.SpanOptions{
		Name:     name + "_query",
		Input:    map[string]any{"input": input},
		Metadata: metadata,
	})

	ids := IDs{TraceID: tr.ID(), ObservationID: sp.ID()}

	b.mu.Lock()
	b.open[ids.ObservationID] = openSpan{trace: tr, span: sp}
	b.mu.Unlock()

	return ids, true
}

func (b *TraceBackend) EndSpan(ids IDs, output string, err error) {
	if ids.Disabled() {
		return
	}

	b.mu.Lock()
	entry, ok := b.open[ids.ObservationID]
	delete(b.open, ids.ObservationID)
	b.mu.Unlock()

	if !ok {
		return
	}

	entry.span.End(&trace.SpanEndOptions{
		Output: map[string]any{"response": output},
		Err:    err,
	})
	entry.trace.End(&trace.TraceEndOptions{
		Output: map[string]any{"response": output},
	})
}

func (b *TraceBackend) SubmitScore(ids IDs, name string, value float64, comment string) {
	if ids.Disabled() {
		return
	}

	b.client.Score(trace.ScoreOptions{
		TraceID:       ids.TraceID,
		ObservationID: ids.ObservationID,
		Name:          name,
		Value:         value,
		DataType:      "NUMERIC",
		Comment:       comment,
	})
}
