package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/everai-labs/simulation-engine/internal/models"
)

// Client is a Go SDK for the simulation-engine API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new simulation-engine client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-success response from the service
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// envelope matches the service's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call issues a request and decodes the envelope's data into out (out may be
// nil when no payload is expected)
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{Code: "unknown", Message: resp.Status}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}

	return nil
}

// CreateSimulation creates a new simulation
func (c *Client) CreateSimulation(ctx context.Context, req models.CreateSimulationRequest) (*models.CreateSimulationResponse, error) {
	var resp models.CreateSimulationResponse
	if err := c.call(ctx, "POST", "/api/v1/simulations", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateSimulation applies a partial update to a simulation
func (c *Client) UpdateSimulation(ctx context.Context, id string, req models.UpdateSimulationRequest) (*models.UpdateSimulationResponse, error) {
	var resp models.UpdateSimulationResponse
	if err := c.call(ctx, "PUT", fmt.Sprintf("/api/v1/simulations/%s", id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSimulation retrieves a simulation by id
func (c *Client) GetSimulation(ctx context.Context, id string) (*models.Simulation, error) {
	var resp models.Simulation
	if err := c.call(ctx, "GET", fmt.Sprintf("/api/v1/simulations/%s", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOptions contains options for listing simulations
type ListOptions struct {
	DivisionID string
	Status     string
	Limit      int
	Offset     int
}

// ListSimulations retrieves simulations matching the options
func (c *Client) ListSimulations(ctx context.Context, opts ListOptions) ([]*models.Simulation, error) {
	path := "/api/v1/simulations?"
	if opts.DivisionID != "" {
		path += fmt.Sprintf("division_id=%s&", opts.DivisionID)
	}
	if opts.Status != "" {
		path += fmt.Sprintf("status=%s&", opts.Status)
	}
	if opts.Limit > 0 {
		path += fmt.Sprintf("limit=%d&", opts.Limit)
	}
	if opts.Offset > 0 {
		path += fmt.Sprintf("offset=%d&", opts.Offset)
	}

	var resp struct {
		Simulations []*models.Simulation `json:"simulations"`
		Total       int                  `json:"total"`
	}
	if err := c.call(ctx, "GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Simulations, nil
}

// StartPreview starts an audio preview session and returns its access token
func (c *Client) StartPreview(ctx context.Context, id, userID string) (string, error) {
	var resp models.PreviewResponse
	req := models.PreviewRequest{UserID: userID}
	if err := c.call(ctx, "POST", fmt.Sprintf("/api/v1/simulations/%s/preview", id), req, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// ListVoices retrieves the voice catalog
func (c *Client) ListVoices(ctx context.Context) ([]map[string]interface{}, error) {
	var resp struct {
		Voices []map[string]interface{} `json:"voices"`
		Total  int                      `json:"total"`
	}
	if err := c.call(ctx, "GET", "/api/v1/voices", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Voices, nil
}
