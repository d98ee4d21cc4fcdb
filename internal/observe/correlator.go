package observe

import (
	"time"
)

// Invocation is one request/response cycle. It is created by Correlator.Start
// and finalized exactly once by Correlator.Finish; after that it is not
// mutated. An Invocation belongs to the wrapper that created it and is never
// shared across concurrent calls.
type Invocation struct {
	Input         string
	Output        string
	StartedAt     time.Time
	EndedAt       time.Time
	TraceID       string
	ObservationID string
	PromptVersion string

	ids      IDs
	finished bool
}

// IDs returns the correlation pair for this invocation.
func (inv *Invocation) IDs() IDs {
	return inv.ids
}

// Traced reports whether the invocation carries real backend identifiers.
func (inv *Invocation) Traced() bool {
	return !inv.ids.Disabled()
}

// Correlator brackets each agent invocation with a correlated trace/span
// pair at the backend.
type Correlator struct {
	backend  Backend
	name     string
	metadata map[string]any
}

// NewCorrelator creates a correlator recording spans under the given trace
// name.
func NewCorrelator(backend Backend, name string, metadata map[string]any) *Correlator {
	return &Correlator{
		backend:  backend,
		name:     name,
		metadata: metadata,
	}
}

// Start opens a trace/span pair for one invocation. When the backend is
// unavailable the invocation carries sentinel identifiers and the agent call
// proceeds untraced.
func (c *Correlator) Start(input string) *Invocation {
	inv := &Invocation{
		Input:     input,
		StartedAt: time.Now().UTC(),
	}

	ids, ok := c.backend.StartSpan(c.name, input, c.metadata)
	if ok {
		inv.ids = ids
		inv.TraceID = ids.TraceID
		inv.ObservationID = ids.ObservationID
	}

	return inv
}

// Finish closes the invocation's span with the output, or with an error
// marker when err is non-nil. Finish is idempotent: only the first call per
// invocation reaches the backend, so the span is closed exactly once on
// every exit path.
func (c *Correlator) Finish(inv *Invocation, output string, err error) {
	if inv.finished {
		return
	}
	inv.finished = true

	inv.Output = output
	inv.EndedAt = time.Now().UTC()

	c.backend.EndSpan(inv.ids, output, err)
}
