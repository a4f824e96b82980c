package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everai-labs/simulation-engine/internal/audit"
	"github.com/everai-labs/simulation-engine/internal/clients"
	"github.com/everai-labs/simulation-engine/internal/config"
	"github.com/everai-labs/simulation-engine/internal/models"
	"github.com/everai-labs/simulation-engine/internal/simulation"
	"github.com/everai-labs/simulation-engine/internal/voices"
)

type fakeService struct {
	createResp  *models.CreateSimulationResponse
	createErr   error
	createdReq  *models.CreateSimulationRequest
	updateResp  *models.UpdateSimulationResponse
	updateErr   error
	updatedID   string
	updatedReq  *models.UpdateSimulationRequest
	previewResp *models.PreviewResponse
	previewErr  error
	previewedID string
	sim         *models.Simulation
	getErr      error
	listed      []*models.Simulation
	listFilters models.ListFilters
	listErr     error
	pingErr     error
}

func (f *fakeService) Create(_ context.Context, req *models.CreateSimulationRequest) (*models.CreateSimulationResponse, error) {
	f.createdReq = req
	return f.createResp, f.createErr
}

func (f *fakeService) Update(_ context.Context, id string, req *models.UpdateSimulationRequest) (*models.UpdateSimulationResponse, error) {
	f.updatedID = id
	f.updatedReq = req
	return f.updateResp, f.updateErr
}

func (f *fakeService) Preview(_ context.Context, id, _ string) (*models.PreviewResponse, error) {
	f.previewedID = id
	return f.previewResp, f.previewErr
}

func (f *fakeService) Get(_ context.Context, _ string) (*models.Simulation, error) {
	return f.sim, f.getErr
}

func (f *fakeService) List(_ context.Context, filters models.ListFilters) ([]*models.Simulation, error) {
	f.listFilters = filters
	return f.listed, f.listErr
}

func (f *fakeService) Ping(_ context.Context) error { return f.pingErr }

type fakePreviewLog struct {
	entries []audit.PreviewEntry
	err     error
}

func (f *fakePreviewLog) Recent(_ context.Context, _ string, _ int64) ([]audit.PreviewEntry, error) {
	return f.entries, f.err
}

func newTestServer(service *fakeService, previews PreviewLog) *Server {
	return NewServer(config.ServerConfig{Host: "localhost", Port: 8080}, service, voices.NewCatalog(), previews)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Refund flow",
		"division_id": "div-1",
		"type":        "audio",
		"user_id":     "user-1",
		"script": []map[string]interface{}{
			{"role": "agent", "script_sentence": "Hello, how can I help?"},
			{"role": "customer", "script_sentence": "I need a refund.", "keywords": []string{"refund"}},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeService{}, nil)

	rec := doRequest(t, s, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestReadyEndpoint(t *testing.T) {
	s := newTestServer(&fakeService{}, nil)
	rec := doRequest(t, s, "GET", "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s = newTestServer(&fakeService{pingErr: errors.New("db down")}, nil)
	rec = doRequest(t, s, "GET", "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateSimulationEndpoint(t *testing.T) {
	service := &fakeService{
		createResp: &models.CreateSimulationResponse{ID: "sim-1", Status: "success", Prompt: "p"},
	}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "POST", "/api/v1/simulations", validCreateBody())

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)

	data, _ := resp.Data.(map[string]interface{})
	assert.Equal(t, "sim-1", data["id"])

	require.NotNil(t, service.createdReq)
	assert.Equal(t, "Refund flow", service.createdReq.Name)
	require.Len(t, service.createdReq.Script, 2)
}

func TestCreateSimulationValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]interface{})
	}{
		{"missing name", func(b map[string]interface{}) { delete(b, "name") }},
		{"missing user_id", func(b map[string]interface{}) { delete(b, "user_id") }},
		{"empty script", func(b map[string]interface{}) { b["script"] = []interface{}{} }},
		{"script line without role", func(b map[string]interface{}) {
			b["script"] = []map[string]interface{}{{"script_sentence": "Hello"}}
		}},
		{"script line without sentence", func(b map[string]interface{}) {
			b["script"] = []map[string]interface{}{{"role": "agent"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeService{}
			s := newTestServer(service, nil)

			body := validCreateBody()
			tt.mutate(body)

			rec := doRequest(t, s, "POST", "/api/v1/simulations", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, "validation_error", resp.Error.Code)
			assert.Nil(t, service.createdReq, "service must not be called on invalid input")
		})
	}
}

func TestCreateSimulationInvalidJSON(t *testing.T) {
	s := newTestServer(&fakeService{}, nil)

	req := httptest.NewRequest("POST", "/api/v1/simulations", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeEnvelope(t, rec).Error.Code)
}

func TestCreateSimulationUpstreamFailure(t *testing.T) {
	service := &fakeService{
		createErr: fmt.Errorf("openai chat-completion: unexpected status 500: %w", clients.ErrUpstream),
	}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "POST", "/api/v1/simulations", validCreateBody())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "upstream_error", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unexpected status 500")
}

func TestCreateSimulationStoreFailure(t *testing.T) {
	service := &fakeService{createErr: errors.New("connection reset")}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "POST", "/api/v1/simulations", validCreateBody())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "internal_error", resp.Error.Code)
	// internal detail stays out of the response body
	assert.NotContains(t, resp.Error.Message, "connection reset")
}

func TestUpdateSimulationEndpoint(t *testing.T) {
	service := &fakeService{
		updateResp: &models.UpdateSimulationResponse{ID: "sim-1", Status: "success"},
	}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "PUT", "/api/v1/simulations/sim-1", map[string]interface{}{
		"name":    "renamed",
		"user_id": "user-1",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sim-1", service.updatedID)
	require.NotNil(t, service.updatedReq)
	require.NotNil(t, service.updatedReq.Name)
	assert.Equal(t, "renamed", *service.updatedReq.Name)
}

func TestUpdateSimulationRequiresUserID(t *testing.T) {
	service := &fakeService{}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "PUT", "/api/v1/simulations/sim-1", map[string]interface{}{
		"name": "renamed",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.updatedID)
}

func TestUpdateSimulationRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(&fakeService{}, nil)

	rec := doRequest(t, s, "PUT", "/api/v1/simulations/sim-1", map[string]interface{}{
		"status":  "deleted",
		"user_id": "user-1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeEnvelope(t, rec).Error.Code)
}

func TestUpdateSimulationNotFound(t *testing.T) {
	service := &fakeService{updateErr: simulation.ErrSimulationNotFound}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "PUT", "/api/v1/simulations/missing", map[string]interface{}{
		"name":    "renamed",
		"user_id": "user-1",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeEnvelope(t, rec).Error.Code)
}

func TestGetSimulationEndpoint(t *testing.T) {
	service := &fakeService{sim: &models.Simulation{ID: "sim-1", Name: "Refund flow"}}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "GET", "/api/v1/simulations/sim-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeEnvelope(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "Refund flow", data["name"])
}

func TestListSimulationsEndpoint(t *testing.T) {
	service := &fakeService{listed: []*models.Simulation{
		{ID: "sim-1"}, {ID: "sim-2"},
	}}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "GET", "/api/v1/simulations?division_id=div-1&status=draft&limit=10&offset=5", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeEnvelope(t, rec).Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])

	assert.Equal(t, "div-1", service.listFilters.DivisionID)
	assert.Equal(t, models.StatusDraft, service.listFilters.Status)
	assert.Equal(t, 10, service.listFilters.Limit)
	assert.Equal(t, 5, service.listFilters.Offset)
}

func TestPreviewSimulationEndpoint(t *testing.T) {
	service := &fakeService{previewResp: &models.PreviewResponse{AccessToken: "tok-1"}}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "POST", "/api/v1/simulations/sim-1/preview", map[string]interface{}{
		"user_id": "user-1",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeEnvelope(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "tok-1", data["access_token"])
	assert.Equal(t, "sim-1", service.previewedID)
}

func TestPreviewSimulationRequiresUserID(t *testing.T) {
	service := &fakeService{}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "POST", "/api/v1/simulations/sim-1/preview", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.previewedID)
}

func TestPreviewSimulationAgentNotConfigured(t *testing.T) {
	service := &fakeService{previewErr: simulation.ErrAgentNotConfigured}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "POST", "/api/v1/simulations/sim-1/preview", map[string]interface{}{
		"user_id": "user-1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "agent_not_configured", decodeEnvelope(t, rec).Error.Code)
}

func TestPreviewSimulationUpstreamFailure(t *testing.T) {
	service := &fakeService{
		previewErr: fmt.Errorf("retell create-web-call: provider unreachable: %w", clients.ErrUpstream),
	}
	s := newTestServer(service, nil)

	rec := doRequest(t, s, "POST", "/api/v1/simulations/sim-1/preview", map[string]interface{}{
		"user_id": "user-1",
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_error", decodeEnvelope(t, rec).Error.Code)
}

func TestListPreviewsEndpoint(t *testing.T) {
	previews := &fakePreviewLog{entries: []audit.PreviewEntry{
		{SimulationID: "sim-1", UserID: "user-1", AgentID: "agent-1", At: time.Now().UTC()},
	}}
	s := newTestServer(&fakeService{}, previews)

	rec := doRequest(t, s, "GET", "/api/v1/simulations/sim-1/previews", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeEnvelope(t, rec).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestListPreviewsNotConfigured(t *testing.T) {
	s := newTestServer(&fakeService{}, nil)

	rec := doRequest(t, s, "GET", "/api/v1/simulations/sim-1/previews", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_available", decodeEnvelope(t, rec).Error.Code)
}

func TestVoiceEndpoints(t *testing.T) {
	service := &fakeService{}
	s := newTestServer(service, nil)
	require.NoError(t, s.catalog.LoadFromFile(writeVoiceCatalog(t)))

	rec := doRequest(t, s, "GET", "/api/v1/voices", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeEnvelope(t, rec).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])

	rec = doRequest(t, s, "GET", "/api/v1/voices/11labs-Adrian", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, "GET", "/api/v1/voices/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func writeVoiceCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voices.yaml")
	content := "voices:\n  - id: 11labs-Adrian\n    name: Adrian\n    provider: elevenlabs\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
