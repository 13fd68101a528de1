// Package client is an HTTP/JSON client for the onboarding REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Entry is an onboarding category.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Configuration is the server's configuration as returned by the API.
type Configuration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Username    string  `json:"username"`
	PasswordSet bool    `json:"password_set"`
	Entries     []Entry `json:"entries"`
}

// Credential is a stored credential without its secret.
type Credential struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Username    string `json:"username,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateCredentialRequest describes a credential to store.
type CreateCredentialRequest struct {
	ID          string `json:"id,omitempty"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Username    string `json:"username,omitempty"`
	Secret      string `json:"secret"`
}

// StepResult is the outcome of running an onboarding step.
type StepResult struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// CallbackResult reports a successful callback.
type CallbackResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// APIError represents an error response from the server. Kind is set for
// validation and callback failures (for example "http-status").
type APIError struct {
	StatusCode int
	Message    string
	Kind       string
	Field      string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, e.Kind)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// HTTPClient talks to an onboarding server.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a client targeting baseURL (e.g.
// "http://127.0.0.1:8080"). When token is non-empty it is sent as a Bearer
// token on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/api/v1/health", nil, nil)
}

func (c *HTTPClient) GetConfiguration(ctx context.Context) (*Configuration, error) {
	var cfg Configuration
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/configuration", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) ListEntries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) AddEntry(ctx context.Context, name string) (*Entry, error) {
	var e Entry
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/entries", map[string]string{"name": name}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) RenameEntry(ctx context.Context, id, name string) (*Entry, error) {
	var e Entry
	path := "/api/v1/entries/" + url.PathEscape(id)
	if err := c.doJSON(ctx, http.MethodPatch, path, map[string]string{"name": name}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) RemoveEntry(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/entries/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) Categories(ctx context.Context) ([]string, error) {
	var resp struct {
		Categories []string `json:"categories"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *HTTPClient) RunStep(ctx context.Context, category string) (*StepResult, error) {
	var res StepResult
	body := map[string]string{"category": category}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/steps", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TestConnection asks the server to post an empty authenticated request to
// the given endpoint.
func (c *HTTPClient) TestConnection(ctx context.Context, endpoint, username, password string) (*CallbackResult, error) {
	var res CallbackResult
	body := map[string]string{"url": endpoint, "username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/connection/test", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ListCredentials(ctx context.Context) ([]Credential, error) {
	var creds []Credential
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/credentials", nil, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (c *HTTPClient) CreateCredential(ctx context.Context, req *CreateCredentialRequest) (*Credential, error) {
	var cred Credential
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/credentials", req, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (c *HTTPClient) DeleteCredential(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/credentials/"+url.PathEscape(id), nil, nil)
}

// SubmitCredential forwards a stored credential to the configured endpoint.
func (c *HTTPClient) SubmitCredential(ctx context.Context, id string) (*CallbackResult, error) {
	var res CallbackResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/credentials/"+url.PathEscape(id)+"/submit", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
			Field string `json:"field"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error, Kind: errResp.Kind, Field: errResp.Field}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
