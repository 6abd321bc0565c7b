package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nikbrunner/spots/internal/model"
)

const (
	defaultAPIURL = "https://api.anthropic.com/v1/messages"
	apiVersion    = "2023-06-01"
	betaHeader    = "structured-outputs-2025-11-13"
	haikuModel    = "claude-haiku-4-5-20251001"
)

var (
	ErrNoAPIKey        = errors.New("ANTHROPIC_API_KEY not set")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Client handles communication with the Anthropic API.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClientParams holds parameters for creating a Client.
type NewClientParams struct {
	APIKey     string
	APIURL     string // defaults to the Anthropic messages endpoint
	HTTPClient *http.Client
}

// NewClient creates a new AI client.
// Returns ErrNoAPIKey if no key is configured.
func NewClient(params NewClientParams) (*Client, error) {
	if params.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	apiURL := params.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{apiKey: params.APIKey, apiURL: apiURL, httpClient: httpClient}, nil
}

// Enrich asks the model for event and venue details of a captured post.
func (c *Client) Enrich(ctx context.Context, post model.CapturedPost, categories []string) (*Enrichment, error) {
	prompt := buildPrompt(post, categories)

	str := schemaProp{Type: "string"}
	reqBody := apiRequest{
		Model:     haikuModel,
		MaxTokens: 512,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
		OutputFormat: &outputFormat{
			Type: "json_schema",
			Schema: jsonSchema{
				Type: "object",
				Properties: map[string]schemaProp{
					"eventName":   str,
					"venueName":   str,
					"address":     str,
					"eventDate":   str,
					"startTime":   str,
					"endTime":     str,
					"eventType":   str,
					"category":    str,
					"tags":        {Type: "array", Items: &str},
					"description": str,
					"confidence":  {Type: "number"},
				},
				Required: []string{
					"eventName", "venueName", "address", "eventDate", "startTime", "endTime",
					"eventType", "category", "tags", "description", "confidence",
				},
				AdditionalProperties: false,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", betaHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Content) == 0 || apiResp.Content[0].Type != "text" {
		return nil, ErrInvalidResponse
	}

	var result Enrichment
	if err := json.Unmarshal([]byte(apiResp.Content[0].Text), &result); err != nil {
		return nil, fmt.Errorf("unmarshal AI response: %w", err)
	}

	return &result, nil
}
