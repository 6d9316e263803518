package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"careerpath-backend/config"
)

var (
	// ErrAPIKeyMissing means the gateway credential is not configured.
	ErrAPIKeyMissing = errors.New("AI_API_KEY is not configured")
	// ErrRateLimited maps upstream HTTP 429.
	ErrRateLimited = errors.New("AI gateway rate limit exceeded")
	// ErrCreditsRequired maps upstream HTTP 402.
	ErrCreditsRequired = errors.New("AI gateway credits required")
	// ErrNoContent means a 2xx response carried no message content.
	ErrNoContent = errors.New("no content in AI response")
)

// UpstreamError is any other non-2xx outcome from the gateway.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI gateway error: status %d", e.Status)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GatewayClient submits prompts to the chat-completions gateway. A single
// non-streaming request per call; no retries, the transport default timeout.
type GatewayClient struct {
	HTTPClient *http.Client
}

func NewGatewayClient() *GatewayClient {
	return &GatewayClient{HTTPClient: &http.Client{}}
}

// Complete sends the system and user prompts and returns the raw message
// content. Status 429 and 402 short-circuit to their distinct errors before
// any body parsing.
func (c *GatewayClient) Complete(ctx context.Context, system, user string) (string, error) {
	apiKey := config.AIAPIKey()
	if apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	reqData := chatCompletionRequest{
		Model: config.AIModel(),
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.AIGatewayURL(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", ErrCreditsRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(resp.Body)
		config.Log.Errorw("AI gateway error", "status", resp.StatusCode, "body", string(body))
		return "", &UpstreamError{Status: resp.StatusCode}
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}

	return completion.Choices[0].Message.Content, nil
}
