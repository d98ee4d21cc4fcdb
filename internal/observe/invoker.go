package observe

import (
	"context"
	"fmt"
)

// The conventional capability interfaces. An agent qualifies for wrapping by
// implementing exactly one execution method from this set; resolution picks
// the hinted name first, then probes in the declared order. Each name comes
// in two shapes: plain text out, or a structured value carrying the text.

// Runner executes a request and returns plain text.
type Runner interface {
	Run(ctx context.Context, input string) (string, error)
}

// Executor executes a request and returns plain text.
type Executor interface {
	Execute(ctx context.Context, input string) (string, error)
}

// Processor executes a request and returns plain text.
type Processor interface {
	Process(ctx context.Context, input string) (string, error)
}

// Querier executes a request and returns plain text.
type Querier interface {
	Query(ctx context.Context, input string) (string, error)
}

// StructuredRunner is the structured-response counterpart of Runner. The
// returned value must be a string or implement TextResponse.
type StructuredRunner interface {
	Run(ctx context.Context, input string) (any, error)
}

// StructuredExecutor is the structured-response counterpart of Executor.
type StructuredExecutor interface {
	Execute(ctx context.Context, input string) (any, error)
}

// StructuredProcessor is the structured-response counterpart of Processor.
type StructuredProcessor interface {
	Process(ctx context.Context, input string) (any, error)
}

// StructuredQuerier is the structured-response counterpart of Querier.
type StructuredQuerier interface {
	Query(ctx context.Context, input string) (any, error)
}

// TextResponse is a structured agent response exposing its text content.
type TextResponse interface {
	Content() string
}

type invokeFunc func(ctx context.Context, input string) (any, error)

// candidateMethods is the fixed probe order for capability resolution.
var candidateMethods = []string{"run", "execute", "process", "query"}

// Invoker binds an opaque agent to one resolved execution method. The
// binding is fixed at construction; repeated invocations always hit the
// same entry point.
type Invoker struct {
	method string
	call   invokeFunc
}

// ResolveInvoker resolves the execution capability of agent. When hint names
// a capability the agent has, that one is bound; otherwise the conventional
// names are probed in order. Returns ErrUnsupportedAgent when nothing binds.
func ResolveInvoker(agent any, hint string) (*Invoker, error) {
	if agent == nil {
		return nil, fmt.Errorf("%w: agent is nil", ErrUnsupportedAgent)
	}

	if hint != "" {
		if call, ok := bindMethod(agent, hint); ok {
			return &Invoker{method: hint, call: call}, nil
		}
	}

	for _, name := range candidateMethods {
		if name == hint {
			continue
		}
		if call, ok := bindMethod(agent, name); ok {
			return &Invoker{method: name, call: call}, nil
		}
	}

	return nil, fmt.Errorf("%w (probed %v)", ErrUnsupportedAgent, candidateMethods)
}

// Method returns the resolved method name.
func (inv *Invoker) Method() string {
	return inv.method
}

// Invoke calls the bound method exactly once and normalizes the result to
// plain text. The agent call is never retried here: the underlying call may
// be costly or non-idempotent.
func (inv *Invoker) Invoke(ctx context.Context, input string) (string, error) {
	out, err := inv.call(ctx, input)
	if err != nil {
		return "", err
	}
	return normalizeOutput(out)
}

func bindMethod(agent any, name string) (invokeFunc, bool) {
	switch name {
	case "run":
		if a, ok := agent.(Runner); ok {
			return plainCall(a.Run), true
		}
		if a, ok := agent.(StructuredRunner); ok {
			return a.Run, true
		}
	case "execute":
		if a, ok := agent.(Executor); ok {
			return plainCall(a.Execute), true
		}
		if a, ok := agent.(StructuredExecutor); ok {
			return a.Execute, true
		}
	case "process":
		if a, ok := agent.(Processor); ok {
			return plainCall(a.Process), true
		}
		if a, ok := agent.(StructuredProcessor); ok {
			return a.Process, true
		}
	case "query":
		if a, ok := agent.(Querier); ok {
			return plainCall(a.Query), true
		}
		if a, ok := agent.(StructuredQuerier); ok {
			return a.Query, true
		}
	}
	return nil, false
}

func plainCall(fn func(ctx context.Context, input string) (string, error)) invokeFunc {
	return func(ctx context.Context, input string) (any, error) {
		return fn(ctx, input)
	}
}

func normalizeOutput(out any) (string, error) {
	switch v := out.(type) {
	case string:
		return v, nil
	case TextResponse:
		if v == nil {
			return "", ErrMalformedResponse
		}
		return v.Content(), nil
	case nil:
		return "", ErrMalformedResponse
	default:
		return "", fmt.Errorf("%w: got %T", ErrMalformedResponse, out)
	}
}
