// Package geocode resolves street addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNoMatch is returned when the geocoder finds no address.
	ErrNoMatch = errors.New("no geocoding match")
	// ErrRequest wraps transport and status failures.
	ErrRequest = errors.New("geocoding request failed")
)

// Result is the best match for an address.
type Result struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	City             string
	State            string
	PostalCode       string
}

// Client calls a Radar-style forward geocoding endpoint.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

// NewClientParams holds parameters for creating a Client.
type NewClientParams struct {
	BaseURL    string
	Key        string
	HTTPClient *http.Client
}

// NewClient creates a new geocoding client.
func NewClient(params NewClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		key:        params.Key,
		httpClient: httpClient,
	}
}

type forwardResponse struct {
	Addresses []struct {
		Latitude         float64   `json:"latitude"`
		Longitude        float64   `json:"longitude"`
		Coordinates      []float64 `json:"coordinates"`
		FormattedAddress string    `json:"formattedAddress"`
		City             string    `json:"city"`
		StateCode        string    `json:"stateCode"`
		PostalCode       string    `json:"postalCode"`
	} `json:"addresses"`
}

// Forward returns the first match for address.
func (c *Client) Forward(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoMatch
	}

	endpoint := c.baseURL + "/v1/geocode/forward?query=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.key != "" {
		req.Header.Set("Authorization", c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, string(body))
	}

	var fr forwardResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(fr.Addresses) == 0 {
		return nil, ErrNoMatch
	}

	a := fr.Addresses[0]
	lat, lng := a.Latitude, a.Longitude
	// Some responses carry [lat, lng] instead of separate fields
	if len(a.Coordinates) == 2 && lat == 0 && lng == 0 {
		lat, lng = a.Coordinates[0], a.Coordinates[1]
	}
	if lat == 0 && lng == 0 {
		return nil, ErrNoMatch
	}

	formatted := a.FormattedAddress
	if formatted == "" {
		formatted = address
	}
	return &Result{
		Latitude:         lat,
		Longitude:        lng,
		FormattedAddress: formatted,
		City:             a.City,
		State:            a.StateCode,
		PostalCode:       a.PostalCode,
	}, nil
}
