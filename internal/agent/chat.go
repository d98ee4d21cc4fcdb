package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/di37/climate-agent-observability/internal/observe"
	"github.com/di37/climate-agent-observability/internal/pkg/logger"
)

// ChatSession runs the interactive single-session loop: one query at a time,
// with feedback commands against the last answered query.
type ChatSession struct {
	agent *Observed
	name  string
	in    io.Reader
	out   io.Writer
}

// NewChatSession creates an interactive session over the given streams.
func NewChatSession(agent *Observed, name string, in io.Reader, out io.Writer) *ChatSession {
	return &ChatSession{
		agent: agent,
		name:  name,
		in:    in,
		out:   out,
	}
}

// Run processes user input until "exit" or EOF.
func (s *ChatSession) Run(ctx context.Context) error {
	logger.Info("starting interactive chat session")

	fmt.Fprintf(s.out, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(s.out, "%s\n", strings.ToUpper(s.name))
	fmt.Fprintf(s.out, "%s\n\n", strings.Repeat("=", 80))
	if s.agent.PromptVersion != "" {
		fmt.Fprintf(s.out, "Using prompt version: %s\n", s.agent.PromptVersion)
	}
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  - type your question")
	fmt.Fprintln(s.out, "  - type 'exit' to quit")
	fmt.Fprintln(s.out, "  - after a response, type: + / - or 'feedback' for a detailed rating")
	fmt.Fprintln(s.out)

	scanner := bufio.NewScanner(s.in)
	var last *observe.Result

	for {
		fmt.Fprint(s.out, "You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "":
			continue

		case input == "exit" || input == "quit" || input == "q":
			logger.Info("chat session ended by user")
			fmt.Fprintln(s.out, "\nCheck the trace dashboard for queries and quality scores.")
			return scanner.Err()

		case (input == "+" || input == "-" || input == "feedback") && last != nil:
			s.handleFeedback(scanner, input, last)

		default:
			result, err := s.agent.Query(ctx, input)
			if err != nil {
				logger.Error("query error", zap.Error(err))
				fmt.Fprintf(s.out, "\nError: %v\n\n", err)
				continue
			}
			last = result

			fmt.Fprintf(s.out, "\nAgent: %s\n", result.Output)
			if result.TraceID != "" {
				fmt.Fprintf(s.out, "\nTrace ID: %s\n", result.TraceID)
			}
			fmt.Fprintln(s.out, "Rate this response: + / - or 'feedback' for a detailed rating")
			fmt.Fprintln(s.out)
		}
	}

	return scanner.Err()
}

func (s *ChatSession) handleFeedback(scanner *bufio.Scanner, input string, last *observe.Result) {
	switch input {
	case "+":
		s.submitFeedback(last, "positive", "")
	case "-":
		s.submitFeedback(last, "negative", "")
	case "feedback":
		fmt.Fprint(s.out, "Rating (0-1, 0=bad, 1=excellent): ")
		if !scanner.Scan() {
			return
		}
		rating := strings.TrimSpace(scanner.Text())

		fmt.Fprint(s.out, "Optional comment: ")
		if !scanner.Scan() {
			return
		}
		comment := strings.TrimSpace(scanner.Text())

		s.submitFeedback(last, rating, comment)
	}
}

func (s *ChatSession) submitFeedback(last *observe.Result, feedback, comment string) {
	err := s.agent.AddFeedback(last.TraceID, last.ObservationID, feedback, comment)
	if err != nil {
		fmt.Fprintf(s.out, "Could not record feedback: %v\n\n", err)
		return
	}
	fmt.Fprintln(s.out, "Feedback recorded.")
	fmt.Fprintln(s.out)
}
