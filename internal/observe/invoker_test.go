package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerAgent struct {
	calls int
}

func (a *runnerAgent) Run(ctx context.Context, input string) (string, error) {
	a.calls++
	return "ran: " + input, nil
}

type executorAgent struct {
	calls int
}

func (a *executorAgent) Execute(ctx context.Context, input string) (string, error) {
	a.calls++
	return "executed: " + input, nil
}

type querierAgent struct{}

func (a *querierAgent) Query(ctx context.Context, input string) (string, error) {
	return "queried: " + input, nil
}

type structuredResponse struct {
	text string
}

func (r structuredResponse) Content() string { return r.text }

type structuredAgent struct {
	result any
	calls  int
}

func (a *structuredAgent) Run(ctx context.Context, input string) (any, error) {
	a.calls++
	return a.result, nil
}

type noCapabilityAgent struct{}

func (a *noCapabilityAgent) Think(input string) string { return input }

func TestResolveInvoker(t *testing.T) {
	t.Run("binds runner by default probe order", func(t *testing.T) {
		inv, err := ResolveInvoker(&runnerAgent{}, "")
		require.NoError(t, err)
		assert.Equal(t, "run", inv.Method())
	})

	t.Run("binds hinted method first", func(t *testing.T) {
		inv, err := ResolveInvoker(&querierAgent{}, "query")
		require.NoError(t, err)
		assert.Equal(t, "query", inv.Method())
	})

	t.Run("falls back to probing when hint does not match", func(t *testing.T) {
		inv, err := ResolveInvoker(&executorAgent{}, "run")
		require.NoError(t, err)
		assert.Equal(t, "execute", inv.Method())
	})

	t.Run("unsupported agent fails at resolve time", func(t *testing.T) {
		inv, err := ResolveInvoker(&noCapabilityAgent{}, "")
		assert.Nil(t, inv)
		assert.ErrorIs(t, err, ErrUnsupportedAgent)
	})

	t.Run("nil agent fails", func(t *testing.T) {
		_, err := ResolveInvoker(nil, "")
		assert.ErrorIs(t, err, ErrUnsupportedAgent)
	})
}

func TestInvoker_Invoke(t *testing.T) {
	ctx := context.Background()

	t.Run("calls the bound method exactly once", func(t *testing.T) {
		agent := &runnerAgent{}
		inv, err := ResolveInvoker(agent, "")
		require.NoError(t, err)

		out, err := inv.Invoke(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, "ran: hello", out)
		assert.Equal(t, 1, agent.calls)
	})

	t.Run("binding is stable across invocations", func(t *testing.T) {
		agent := &executorAgent{}
		inv, err := ResolveInvoker(agent, "")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := inv.Invoke(ctx, "x")
			require.NoError(t, err)
		}
		assert.Equal(t, "execute", inv.Method())
		assert.Equal(t, 3, agent.calls)
	})

	t.Run("extracts content from structured responses", func(t *testing.T) {
		agent := &structuredAgent{result: structuredResponse{text: "structured answer"}}
		inv, err := ResolveInvoker(agent, "")
		require.NoError(t, err)

		out, err := inv.Invoke(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, "structured answer", out)
	})

	t.Run("accepts plain strings from structured shape", func(t *testing.T) {
		agent := &structuredAgent{result: "plain answer"}
		inv, err := ResolveInvoker(agent, "")
		require.NoError(t, err)

		out, err := inv.Invoke(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, "plain answer", out)
	})

	t.Run("rejects responses with no extractable text", func(t *testing.T) {
		agent := &structuredAgent{result: 42}
		inv, err := ResolveInvoker(agent, "")
		require.NoError(t, err)

		_, err = inv.Invoke(ctx, "q")
		assert.ErrorIs(t, err, ErrMalformedResponse)
		assert.Equal(t, 1, agent.calls)
	})

	t.Run("rejects nil responses", func(t *testing.T) {
		agent := &structuredAgent{result: nil}
		inv, err := ResolveInvoker(agent, "")
		require.NoError(t, err)

		_, err = inv.Invoke(ctx, "q")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("propagates agent errors without retry", func(t *testing.T) {
		agent := &failingAgent{err: errors.New("boom")}
		inv, err := ResolveInvoker(agent, "")
		require.NoError(t, err)

		_, err = inv.Invoke(ctx, "q")
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 1, agent.calls)
	})
}

type failingAgent struct {
	err   error
	calls int
}

func (a *failingAgent) Run(ctx context.Context, input string) (string, error) {
	a.calls++
	return "", a.err
}
