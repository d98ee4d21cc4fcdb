package observe

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedAgent means the wrapped object exposes none of the
	// conventional execution capabilities. Surfaced at wrap time, before any
	// invocation is attempted.
	ErrUnsupportedAgent = errors.New("agent exposes no supported execution method")

	// ErrMalformedResponse means the agent returned a value the invoker
	// cannot extract text from. Coercing such values to empty strings would
	// make scoring meaningless, so the call fails instead.
	ErrMalformedResponse = errors.New("agent returned a response with no extractable text")

	// ErrInvalidFeedback means a user feedback value was neither a known
	// polarity nor a number in [0,1].
	ErrInvalidFeedback = errors.New("invalid feedback value")
)

// InvocationError wraps a failure raised by the wrapped agent itself. The
// trace is closed with an error marker before this propagates; the agent
// call is never retried.
type InvocationError struct {
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("agent invocation failed: %v", e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
