package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// PromptVersion represents a specific version of a managed prompt.
type PromptVersion struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Version   int            `json:"version"`
	Prompt    string         `json:"prompt"`
	Config    map[string]any `json:"config"`
	Labels    []string       `json:"labels"`
	CreatedAt string         `json:"createdAt"`
}

// VersionTag returns the version as a display string. Fallback prompts
// report "default".
func (p *PromptVersion) VersionTag() string {
	if p.ID == "fallback" {
		return "default"
	}
	return fmt.Sprintf("v%d", p.Version)
}

// Compile substitutes variables into the prompt text.
func (p *PromptVersion) Compile(variables map[string]any) string {
	result := p.Prompt

	for key, value := range variables {
		// Support both {{var}} and {var} syntax
		result = strings.ReplaceAll(result, fmt.Sprintf("{{%s}}", key), fmt.Sprint(value))
		result = strings.ReplaceAll(result, fmt.Sprintf("{%s}", key), fmt.Sprint(value))
	}

	return result
}

type cachedPrompt struct {
	prompt   *PromptVersion
	cachedAt time.Time
}

type promptCache struct {
	mu    sync.RWMutex
	cache map[string]cachedPrompt
	ttl   time.Duration
}

// GetPromptOptions holds options for fetching a prompt.
type GetPromptOptions struct {
	Name     string
	Version  *int
	Label    string
	Fallback string
	CacheTTL time.Duration
}

// GetPrompt fetches a managed prompt from the backend. Any failure falls
// back to opts.Fallback when set; an error is returned only when there is
// no fallback to serve.
func (c *Client) GetPrompt(opts GetPromptOptions) (*PromptVersion, error) {
	if !c.Enabled() {
		return promptFallback(opts)
	}

	cacheKey := promptCacheKey(opts)
	ttl := opts.CacheTTL
	if ttl == 0 {
		ttl = time.Minute
	}

	c.promptsOnce.Do(func() {
		c.prompts = &promptCache{cache: make(map[string]cachedPrompt)}
	})

	c.prompts.mu.RLock()
	if cached, ok := c.prompts.cache[cacheKey]; ok {
		if time.Since(cached.cachedAt) < ttl {
			c.prompts.mu.RUnlock()
			return cached.prompt, nil
		}
	}
	c.prompts.mu.RUnlock()

	params := url.Values{}
	params.Set("name", opts.Name)
	if opts.Version != nil {
		params.Set("version", fmt.Sprintf("%d", *opts.Version))
	}
	if opts.Label != "" {
		params.Set("label", opts.Label)
	}

	apiURL := fmt.Sprintf("%s/api/public/prompts?%s", c.config.Host, params.Encode())

	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return promptFallback(opts)
	}

	req.SetBasicAuth(c.config.PublicKey, c.config.SecretKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return promptFallback(opts)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return promptFallback(opts)
	}

	var prompt PromptVersion
	if err := json.NewDecoder(resp.Body).Decode(&prompt); err != nil {
		return promptFallback(opts)
	}

	c.prompts.mu.Lock()
	c.prompts.cache[cacheKey] = cachedPrompt{prompt: &prompt, cachedAt: time.Now()}
	c.prompts.mu.Unlock()

	return &prompt, nil
}

// CreatePromptOptions holds options for creating or updating a prompt.
type CreatePromptOptions struct {
	Name   string
	Prompt string
	Labels []string
	Config map[string]any
}

// CreatePrompt creates or updates a managed prompt at the backend. Unlike
// the batched event path this is a direct synchronous call, since prompt
// setup is an explicit operator action.
func (c *Client) CreatePrompt(opts CreatePromptOptions) error {
	if !c.Enabled() {
		return fmt.Errorf("trace backend disabled, cannot create prompt %q", opts.Name)
	}

	body := map[string]any{
		"name":   opts.Name,
		"type":   "text",
		"prompt": opts.Prompt,
		"labels": opts.Labels,
		"config": opts.Config,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}

	apiURL := c.config.Host + "/api/public/v2/prompts"

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.config.PublicKey, c.config.SecretKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("prompt creation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("prompt creation failed: status %d", resp.StatusCode)
	}

	c.InvalidatePrompt(opts.Name)

	return nil
}

// InvalidatePrompt drops cached versions of a prompt.
func (c *Client) InvalidatePrompt(name string) {
	if c == nil || c.prompts == nil {
		return
	}

	c.prompts.mu.Lock()
	defer c.prompts.mu.Unlock()

	for key := range c.prompts.cache {
		if strings.HasPrefix(key, name) {
			delete(c.prompts.cache, key)
		}
	}
}

func promptCacheKey(opts GetPromptOptions) string {
	parts := []string{opts.Name}
	if opts.Version != nil {
		parts = append(parts, fmt.Sprintf("v%d", *opts.Version))
	}
	if opts.Label != "" {
		parts = append(parts, "l:"+opts.Label)
	}
	return strings.Join(parts, ":")
}

func promptFallback(opts GetPromptOptions) (*PromptVersion, error) {
	if opts.Fallback != "" {
		return &PromptVersion{
			ID:      "fallback",
			Name:    opts.Name,
			Version: 0,
			Prompt:  opts.Fallback,
			Labels:  []string{"fallback"},
		}, nil
	}
	return nil, fmt.Errorf("prompt %q not found and no fallback provided", opts.Name)
}
