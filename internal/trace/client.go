// Package trace implements a client for a Langfuse-compatible trace backend.
//
// Events (trace/span create and update, scores) are queued in memory and
// shipped in batches by a background goroutine. The client is constructed
// once by the top-level command and injected into everything that records
// observability data; when it is disabled or unreachable it degrades to a
// no-op so tracing can never take the agent down with it.
package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/di37/climate-agent-observability/internal/pkg/logger"
)

const (
	// DefaultMaxQueueSize is the maximum number of events in the queue before dropping oldest
	DefaultMaxQueueSize = 10000

	ingestionPath = "/api/public/ingestion"
	userAgent     = "climate-agent-observability/1.0"
)

// Config holds the configuration for the trace client.
type Config struct {
	// Host is the trace backend host URL.
	Host string

	// PublicKey and SecretKey authenticate against the backend.
	PublicKey string
	SecretKey string

	// Enabled controls whether tracing is enabled. Defaults to true.
	Enabled *bool

	// FlushAt is the number of events before auto-flush. Defaults to 20.
	FlushAt int

	// FlushInterval is the duration between auto-flushes. Defaults to 5 seconds.
	FlushInterval time.Duration

	// MaxRetries is the number of retries for failed requests. Defaults to 3.
	MaxRetries int

	// Timeout is the request timeout. Defaults to 10 seconds.
	Timeout time.Duration

	// MaxQueueSize is the maximum number of events in the queue. Defaults to 10000.
	// When exceeded, oldest events are dropped.
	MaxQueueSize int

	// OnError is an optional callback for errors from background operations
	// like flushing. If nil, errors go to the application logger.
	OnError func(err error)
}

// Client ships trace events to the backend.
type Client struct {
	config        Config
	httpClient    *http.Client
	queue         []map[string]any
	queueMu       sync.Mutex
	flushCh       chan struct{}
	doneCh        chan struct{}
	wg            sync.WaitGroup
	droppedEvents int64
	promptsOnce   sync.Once
	prompts       *promptCache
}

// New creates a new trace client and starts its background flush loop.
func New(config Config) *Client {
	if config.Host == "" {
		config.Host = "https://cloud.langfuse.com"
	}
	if config.Enabled == nil {
		enabled := true
		config.Enabled = &enabled
	}
	if config.FlushAt == 0 {
		config.FlushAt = 20
	}
	if config.FlushInterval == 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxQueueSize == 0 {
		config.MaxQueueSize = DefaultMaxQueueSize
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		queue:   make([]map[string]any, 0),
		flushCh: make(chan struct{}, 1),
		doneCh:  make(chan struct{}),
	}

	c.wg.Add(1)
	go c.flushLoop()

	return c
}

// Enabled returns whether tracing is enabled. A nil client counts as
// disabled so callers holding an absent backend need no special casing.
func (c *Client) Enabled() bool {
	return c != nil && c.config.Enabled != nil && *c.config.Enabled
}

// Trace creates a new trace.
func (c *Client) Trace(opts TraceOptions) *Trace {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}

	trace := &Trace{
		client:    c,
		id:        opts.ID,
		name:      opts.Name,
		sessionID: opts.SessionID,
		metadata:  opts.Metadata,
		tags:      opts.Tags,
		input:     opts.Input,
		startTime: time.Now().UTC(),
	}

	if trace.metadata == nil {
		trace.metadata = make(map[string]any)
	}
	if trace.tags == nil {
		trace.tags = []string{}
	}

	trace.sendCreate()

	return trace
}

// Score submits a score for a trace or observation.
func (c *Client) Score(opts ScoreOptions) {
	if !c.Enabled() {
		return
	}

	c.addEvent(map[string]any{
		"type": "score-create",
		"body": map[string]any{
			"id":            uuid.New().String(),
			"traceId":       opts.TraceID,
			"observationId": opts.ObservationID,
			"name":          opts.Name,
			"value":         opts.Value,
			"dataType":      opts.DataType,
			"comment":       opts.Comment,
			"source":        "API",
		},
	})
}

// Flush sends all pending events to the server.
func (c *Client) Flush() {
	if c == nil {
		return
	}

	c.queueMu.Lock()
	if len(c.queue) == 0 {
		c.queueMu.Unlock()
		return
	}

	events := c.queue
	c.queue = make([]map[string]any, 0)
	c.queueMu.Unlock()

	c.sendBatch(events)
}

// Shutdown stops the flush loop and drains remaining events.
func (c *Client) Shutdown() {
	if c == nil {
		return
	}
	close(c.doneCh)
	c.wg.Wait()
	c.Flush()
}

func (c *Client) addEvent(event map[string]any) {
	c.queueMu.Lock()

	// Enforce queue size limit - drop oldest events if necessary
	if len(c.queue) >= c.config.MaxQueueSize {
		dropped := len(c.queue) - c.config.MaxQueueSize + 1
		c.queue = c.queue[dropped:]
		c.droppedEvents += int64(dropped)
		c.reportError(fmt.Errorf("trace: queue overflow, dropped %d events (total dropped: %d)", dropped, c.droppedEvents))
	}

	c.queue = append(c.queue, event)
	shouldFlush := len(c.queue) >= c.config.FlushAt
	c.queueMu.Unlock()

	if shouldFlush {
		select {
		case c.flushCh <- struct{}{}:
		default:
		}
	}
}

func (c *Client) flushLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.doneCh:
			return
		case <-c.flushCh:
			c.Flush()
		case <-ticker.C:
			c.Flush()
		}
	}
}

func (c *Client) sendBatch(events []map[string]any) {
	if len(events) == 0 {
		return
	}

	payload := map[string]any{
		"batch": events,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.reportError(fmt.Errorf("trace: failed to marshal batch: %w", err))
		return
	}

	url := c.config.Host + ingestionPath
	ctx := context.Background()

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)

		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(c.config.PublicKey, c.config.SecretKey)
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			time.Sleep(time.Duration(1<<attempt) * 500 * time.Millisecond)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := 5
			if h := resp.Header.Get("Retry-After"); h != "" {
				fmt.Sscanf(h, "%d", &retryAfter)
			}
			lastErr = fmt.Errorf("rate limited (429), retry after %ds", retryAfter)
			time.Sleep(time.Duration(retryAfter) * time.Second)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(time.Duration(1<<attempt) * 500 * time.Millisecond)
			continue
		}

		// Client error - don't retry
		c.reportError(fmt.Errorf("trace: client error %d, not retrying", resp.StatusCode))
		return
	}

	if lastErr != nil {
		c.reportError(fmt.Errorf("trace: failed after %d attempts: %w", c.config.MaxRetries, lastErr))
	}
}

func (c *Client) reportError(err error) {
	if c.config.OnError != nil {
		c.config.OnError(err)
		return
	}
	logger.Warn("trace backend error: " + err.Error())
}

// DroppedEvents returns the total number of events dropped due to queue overflow
func (c *Client) DroppedEvents() int64 {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return c.droppedEvents
}

// TraceOptions holds options for creating a trace.
type TraceOptions struct {
	Name      string
	ID        string
	SessionID string
	Metadata  map[string]any
	Tags      []string
	Input     any
}

// ScoreOptions holds options for creating a score.
type ScoreOptions struct {
	TraceID       string
	Name          string
	Value         float64
	ObservationID string
	DataType      string
	Comment       string
}
