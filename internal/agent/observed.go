package agent

import (
	"context"

	"github.com/di37/climate-agent-observability/internal/config"
	"github.com/di37/climate-agent-observability/internal/observe"
	"github.com/di37/climate-agent-observability/internal/trace"
)

// Observed is the analyst wrapped with tracing, scoring, and prompt-version
// tracking.
type Observed struct {
	wrapper *observe.Wrapper

	// PromptVersion is the managed instruction version in use ("default"
	// when the prompt store was unavailable).
	PromptVersion string
}

// NewObserved constructs the analyst with managed instructions and wraps it.
// The trace client may be nil or disabled; the agent still works, untraced.
func NewObserved(cfg *config.Config, traceClient *trace.Client, llmClient ChatClient, store QueryTool) (*Observed, error) {
	instructions, version := observe.ResolveInstructions(traceClient, cfg.Agent.PromptName, cfg.Agent.UseManagedPrompts)

	analyst := NewAnalyst(llmClient, store, cfg.Agent.Model, instructions)

	wrapper, err := observe.Wrap(analyst, observe.Options{
		AgentName:     cfg.Agent.Name,
		MethodHint:    "run",
		Backend:       observe.NewTraceBackend(traceClient),
		EnableScoring: cfg.Scoring.Enabled,
		LengthCap:     cfg.Scoring.LengthCap,
		PromptVersion: version,
	})
	if err != nil {
		return nil, err
	}

	return &Observed{
		wrapper:       wrapper,
		PromptVersion: version,
	}, nil
}

// Query answers one question with full observability.
func (o *Observed) Query(ctx context.Context, question string) (*observe.Result, error) {
	return o.wrapper.Execute(ctx, question)
}

// AddFeedback records user feedback against a past query.
func (o *Observed) AddFeedback(traceID, observationID, feedback, comment string) error {
	return o.wrapper.AddUserFeedback(traceID, observationID, feedback, comment)
}
