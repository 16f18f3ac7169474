// Package ragagent is the HTTP client for the external retrieval+LLM
// collaborator: an OpenAI-compatible agent deployment that owns document
// indexing, embedding and generation. The core hands it one composite text
// blob and takes plain text back.
package ragagent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the HTTP client timeout for completion calls. The
	// calling layer owns the overall request deadline via ctx.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxTokens caps the agent's answer length.
	DefaultMaxTokens = 2048
)

// ErrEmptyAnswer is returned when the agent responds without any content.
var ErrEmptyAnswer = errors.New("agent returned an empty answer")

// Config holds configuration for the agent client
type Config struct {
	DeploymentURL string // e.g. https://xxx.agents.example.run
	AccessKey     string // agent-specific API key
	Timeout       time.Duration
	MaxTokens     int
}

// Client handles all agent API interactions
type Client struct {
	deploymentURL string
	accessKey     string
	maxTokens     int
	httpClient    *http.Client
}

// NewClient creates a new agent client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	return &Client{
		deploymentURL: strings.TrimSuffix(config.DeploymentURL, "/"),
		accessKey:     config.AccessKey,
		maxTokens:     config.MaxTokens,
		httpClient:    &http.Client{Timeout: config.Timeout},
	}
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

type completionRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ExtractContent extracts the answer text from a completion response
func (r *completionResponse) ExtractContent() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Answer submits the composite prompt as a single user turn and returns the
// agent's plain-text answer.
func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/chat/completions", c.deploymentURL)

	body := completionRequest{
		Messages:  []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens: c.maxTokens,
		Stream:    false,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion failed with status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	content := result.ExtractContent()
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyAnswer
	}
	return content, nil
}

// IsTimeoutError checks if the error is a timeout-related error
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "i/o timeout")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
