// Package agent contains the climate agriculture analyst: a pure business
// agent that answers natural-language questions by running SQL against the
// climate dataset, and an observed variant wrapped with full observability.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/di37/climate-agent-observability/internal/llm"
	"github.com/di37/climate-agent-observability/internal/pkg/logger"
)

// queryToolName is the SQL tool exposed to the model.
const queryToolName = "query_database"

// maxToolRounds bounds the tool-calling loop for one question.
const maxToolRounds = 5

// ChatClient is the LLM boundary the analyst talks to.
type ChatClient interface {
	ChatCompletion(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// QueryTool executes SQL and renders the result as text.
type QueryTool interface {
	Query(sql string) string
}

// Analyst is the pure agent: no observability dependencies, runs standalone.
type Analyst struct {
	llm          ChatClient
	store        QueryTool
	model        string
	instructions []string
}

// NewAnalyst creates the base analyst agent.
func NewAnalyst(client ChatClient, store QueryTool, model string, instructions []string) *Analyst {
	return &Analyst{
		llm:          client,
		store:        store,
		model:        model,
		instructions: instructions,
	}
}

// Run answers one question. The model may call the query_database tool
// several times before producing its final answer.
func (a *Analyst) Run(ctx context.Context, question string) (string, error) {
	logger.Info("executing query", zap.String("question", truncate(question, 50)))

	messages := []llm.Message{
		{Role: "system", Content: strings.Join(a.instructions, "\n")},
		{Role: "user", Content: question},
	}

	tools := []llm.Tool{{
		Type: "function",
		Function: llm.FunctionDef{
			Name:        queryToolName,
			Description: "Execute a SQL query on the climate_agriculture_data database. SELECT statements only.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sql": map[string]any{
						"type":        "string",
						"description": "The SQL query to execute",
					},
				},
				"required": []string{"sql"},
			},
		},
	}}

	for round := 0; round <= maxToolRounds; round++ {
		resp, err := a.llm.ChatCompletion(ctx, llm.Request{
			Model:       a.model,
			Messages:    messages,
			Tools:       tools,
			Temperature: 0.7,
			MaxTokens:   2000,
		})
		if err != nil {
			return "", err
		}

		msg, err := resp.Message()
		if err != nil {
			return "", err
		}

		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			messages = append(messages, a.runTool(call))
		}
	}

	return "", fmt.Errorf("tool call limit reached after %d rounds", maxToolRounds)
}

func (a *Analyst) runTool(call llm.ToolCall) llm.Message {
	result := a.executeTool(call)
	return llm.Message{
		Role:       "tool",
		ToolCallID: call.ID,
		Name:       call.Function.Name,
		Content:    result,
	}
}

func (a *Analyst) executeTool(call llm.ToolCall) string {
	if call.Function.Name != queryToolName {
		return fmt.Sprintf("Unknown tool: %s", call.Function.Name)
	}

	var args struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fmt.Sprintf("Invalid tool arguments: %v", err)
	}

	logger.Debug("executing SQL tool", zap.String("sql", truncate(args.SQL, 100)))
	return a.store.Query(args.SQL)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
