package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/model"
)

// ErrNoSession is returned by authenticated calls when no token is available.
var ErrNoSession = errors.New("not logged in")

// TokenSource supplies the bearer token for authenticated calls.
// An empty token means no session.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the saves, auth and share endpoints of the backend.
// Calls are never retried.
type Client struct {
	baseURL      string
	shareBaseURL string
	tokens       TokenSource
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClientParams holds parameters for creating a Client.
type NewClientParams struct {
	BaseURL      string
	ShareBaseURL string // defaults to BaseURL
	Tokens       TokenSource
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// NewClient creates a new backend client.
func NewClient(params NewClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	shareBase := params.ShareBaseURL
	if shareBase == "" {
		shareBase = params.BaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(params.BaseURL, "/"),
		shareBaseURL: strings.TrimRight(shareBase, "/"),
		tokens:       params.Tokens,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// SetTokenSource replaces the token source. Used when the auth manager
// is built on top of this client.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "login"

	var resp loginResponse
	if err := c.do(ctx, op, http.MethodPost, c.baseURL+"/v1/auth/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Session == nil || resp.Session.AccessToken == "" {
		msg := resp.Error
		if msg == "" {
			msg = "login failed"
		}
		return nil, &BackendError{Op: op, Err: errors.New(msg)}
	}

	result := &LoginResult{Session: *resp.Session}
	if resp.User != nil {
		result.User = *resp.User
	}
	return result, nil
}

// Logout invalidates token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, "logout", http.MethodPost, c.baseURL+"/v1/auth/logout", token, nil, nil)
}

// Verify checks token with the backend. A rejected token is reported as
// valid=false without error; transport failures return a BackendError.
func (c *Client) Verify(ctx context.Context, token string) (bool, *User, error) {
	var resp verifyResponse
	err := c.do(ctx, "verify", http.MethodPost, c.baseURL+"/v1/auth/verify", token, nil, &resp)
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) && (be.StatusCode == http.StatusUnauthorized || be.StatusCode == http.StatusForbidden) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return resp.Valid, resp.User, nil
}

// CreateSave submits a captured post. The backend enriches it and
// returns the stored item.
func (c *Client) CreateSave(ctx context.Context, post model.CapturedPost) (model.SavedItem, error) {
	const op = "create save"

	token, err := c.token(op)
	if err != nil {
		return model.SavedItem{}, err
	}

	author := post.Author
	if author == "" {
		author = "unknown"
	}
	images := post.Images
	if images == nil {
		images = []string{}
	}
	body := createSaveRequest{
		Platform: post.Platform,
		URL:      post.URL,
		Content:  post.Content,
		Images:   images,
		Author:   author,
		Category: model.StringPtr(post.Category),
	}

	var resp saveResponse
	if err := c.do(ctx, op, http.MethodPost, c.baseURL+"/v1/user/saves", token, body, &resp); err != nil {
		return model.SavedItem{}, err
	}
	if !resp.Success || resp.Item == nil {
		return model.SavedItem{}, &BackendError{Op: op, Err: errors.New("backend returned no item")}
	}
	return *resp.Item, nil
}

// ListSaves returns the user's remote saves.
func (c *Client) ListSaves(ctx context.Context) ([]model.SavedItem, error) {
	const op = "list saves"

	token, err := c.token(op)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodGet, c.baseURL+"/v1/user/saves", token, nil, &raw); err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return []model.SavedItem{}, nil
	}

	// The endpoint has answered with {saves}, {items} and a bare array.
	var items []model.SavedItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var wrapped listSavesResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, &BackendError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if wrapped.Saves != nil {
		return wrapped.Saves, nil
	}
	if wrapped.Items != nil {
		return wrapped.Items, nil
	}
	return []model.SavedItem{}, nil
}

// PatchSave updates fields of a remote save.
func (c *Client) PatchSave(ctx context.Context, id string, patch model.Patch) (model.SavedItem, error) {
	const op = "patch save"

	token, err := c.token(op)
	if err != nil {
		return model.SavedItem{}, err
	}

	var resp saveResponse
	if err := c.do(ctx, op, http.MethodPatch, c.baseURL+"/v1/user/saves/"+url.PathEscape(id), token, patch, &resp); err != nil {
		return model.SavedItem{}, err
	}
	if resp.Item == nil {
		return model.SavedItem{}, nil
	}
	return *resp.Item, nil
}

// DeleteSave removes a remote save.
func (c *Client) DeleteSave(ctx context.Context, id string) error {
	const op = "delete save"

	token, err := c.token(op)
	if err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodDelete, c.baseURL+"/v1/user/saves/"+url.PathEscape(id), token, nil, nil)
}

// CreateShareLink publishes items under category and returns the share URL.
func (c *Client) CreateShareLink(ctx context.Context, category string, items []model.SavedItem) (string, error) {
	const op = "create share link"

	if items == nil {
		items = []model.SavedItem{}
	}

	var resp shareResponse
	if err := c.do(ctx, op, http.MethodPost, c.baseURL+"/v1/share", "", shareRequest{Category: category, Items: items}, &resp); err != nil {
		return "", err
	}
	if resp.ShareURL == "" {
		return "", &BackendError{Op: op, Err: errors.New("response has no share_url")}
	}
	return resp.ShareURL, nil
}

// GetShare fetches a shared list.
func (c *Client) GetShare(ctx context.Context, id string) (*Share, error) {
	var share Share
	if err := c.do(ctx, "get share", http.MethodGet, c.shareBaseURL+"/api/share/"+url.PathEscape(id), "", nil, &share); err != nil {
		return nil, err
	}
	if share.ID == "" {
		share.ID = id
	}
	if share.Items == nil {
		share.Items = []model.SavedItem{}
	}
	return &share, nil
}

// ReorderShare replaces the order of a shared list with items.
func (c *Client) ReorderShare(ctx context.Context, id string, items []model.SavedItem) error {
	return c.do(ctx, "reorder share", http.MethodPut, c.shareBaseURL+"/api/share/"+url.PathEscape(id)+"/reorder", "", reorderRequest{Items: items}, nil)
}

func (c *Client) token(op string) (string, error) {
	if c.tokens == nil {
		return "", &BackendError{Op: op, Err: ErrNoSession}
	}
	token, err := c.tokens.Token()
	if err != nil {
		return "", &BackendError{Op: op, Err: err}
	}
	if token == "" {
		return "", &BackendError{Op: op, Err: ErrNoSession}
	}
	return token, nil
}

// do sends one JSON request and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, endpoint, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &BackendError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &BackendError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &BackendError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("backend call",
		zap.String("op", op),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &BackendError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
