// Package observe adds tracing, quality scoring, and prompt-version tracking
// to an arbitrary agent without modifying the agent itself.
//
// The wrapper brackets each invocation with a correlated trace/span pair at
// the backend, scores the answer with deterministic heuristics, and accepts
// user feedback correlated by the same identifiers. Observability here is
// strictly best-effort: a failure anywhere in the tracing or scoring path is
// logged and swallowed, never surfaced into the agent call's result.
package observe

import (
	"context"

	"go.uber.org/zap"

	"github.com/di37/climate-agent-observability/internal/pkg/logger"
)

// Options configures a Wrapper.
type Options struct {
	// AgentName is the display name used for trace and log records.
	AgentName string

	// MethodHint selects the agent's execution method by name. Empty means
	// probe the conventional names in order.
	MethodHint string

	// Backend is the trace backend boundary. Nil disables tracing and
	// scoring submission entirely.
	Backend Backend

	// EnableScoring controls automatic quality scoring after each call.
	EnableScoring bool

	// LengthCap is the response_length saturation threshold in words.
	// Zero selects the default.
	LengthCap int

	// PromptVersion, when set, is recorded on every invocation (managed
	// prompt tracking).
	PromptVersion string
}

// Result is the normalized outcome of one observed invocation.
type Result struct {
	Output        string
	TraceID       string
	ObservationID string
	PromptVersion string
}

// Wrapper adds observability to one wrapped agent. A wrapper runs one
// invocation at a time; it is not meant for concurrent Execute calls.
type Wrapper struct {
	agentName     string
	invoker       *Invoker
	correlator    *Correlator
	engine        *Engine
	backend       Backend
	scoring       bool
	promptVersion string
}

// Wrap resolves the agent's execution capability and returns a wrapper
// around it. Fails with ErrUnsupportedAgent before any invocation when the
// agent exposes no usable method.
func Wrap(agent any, opts Options) (*Wrapper, error) {
	name := opts.AgentName
	if name == "" {
		name = "Agent"
	}

	invoker, err := ResolveInvoker(agent, opts.MethodHint)
	if err != nil {
		return nil, err
	}

	backend := opts.Backend
	if backend == nil {
		backend = noopBackend{}
	}

	metadata := map[string]any{"agent_name": name}
	if opts.PromptVersion != "" {
		metadata["prompt_version"] = opts.PromptVersion
	}

	logger.Info("observability wrapper initialized",
		zap.String("agent", name),
		zap.String("method", invoker.Method()),
		zap.Bool("scoring", opts.EnableScoring),
	)

	return &Wrapper{
		agentName:     name,
		invoker:       invoker,
		correlator:    NewCorrelator(backend, name, metadata),
		engine:        NewEngine(opts.LengthCap),
		backend:       backend,
		scoring:       opts.EnableScoring,
		promptVersion: opts.PromptVersion,
	}, nil
}

// Execute runs the wrapped agent with full observability: trace start, the
// single agent call, trace finish, then scoring. An agent failure closes the
// span with an error marker and returns an *InvocationError; it is never
// retried. Scoring and tracing failures never fail a successful call.
func (w *Wrapper) Execute(ctx context.Context, input string) (*Result, error) {
	log := logger.Log.With(zap.String("agent", w.agentName))
	log.Info("processing request", zap.String("input", truncate(input, 50)))

	inv := w.correlator.Start(input)
	inv.PromptVersion = w.promptVersion

	output, err := w.invoker.Invoke(ctx, input)
	if err != nil {
		w.correlator.Finish(inv, "", err)
		log.Error("agent execution error", zap.Error(err))
		return nil, &InvocationError{Err: err}
	}

	w.correlator.Finish(inv, output, nil)

	if w.scoring {
		for _, rec := range w.engine.Score(input, output) {
			w.backend.SubmitScore(inv.IDs(), rec.Name, rec.Value, rec.Comment)
		}
		log.Debug("scores submitted", zap.String("trace_id", inv.TraceID))
	}

	log.Info("request completed", zap.String("trace_id", inv.TraceID))

	return &Result{
		Output:        output,
		TraceID:       inv.TraceID,
		ObservationID: inv.ObservationID,
		PromptVersion: inv.PromptVersion,
	}, nil
}

// AddUserFeedback attaches a user feedback score to a past invocation,
// correlated by the identifiers Execute returned. Each call appends a new
// score; repeated feedback is not deduplicated here.
func (w *Wrapper) AddUserFeedback(traceID, observationID, feedback, comment string) error {
	rec, err := UserFeedbackScore(feedback, comment)
	if err != nil {
		return err
	}

	w.backend.SubmitScore(IDs{TraceID: traceID, ObservationID: observationID}, rec.Name, rec.Value, rec.Comment)

	logger.Info("user feedback recorded",
		zap.String("trace_id", traceID),
		zap.Float64("value", rec.Value),
	)
	return nil
}

// noopBackend is the sentinel backend used when tracing is disabled.
type noopBackend struct{}

func (noopBackend) StartSpan(string, string, map[string]any) (IDs, bool) { return IDs{}, false }
func (noopBackend) EndSpan(IDs, string, error)                          {}
func (noopBackend) SubmitScore(IDs, string, float64, string)            {}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
