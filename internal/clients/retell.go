package clients

import (
	"context"
	"time"
)

// RetellClient provisions voice-agent resources: reasoning LLMs, agents
// bound to a voice, and ephemeral web-call sessions.
type RetellClient struct {
	caller
	baseURL string
	apiKey  string
}

// NewRetellClient creates a new voice-agent provider client
func NewRetellClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *RetellClient {
	return &RetellClient{
		caller:  newCaller(timeout, opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type createLLMRequest struct {
	GeneralPrompt string `json:"general_prompt"`
}

type createLLMResponse struct {
	LLMID string `json:"llm_id"`
}

// CreateLLM provisions a reasoning resource from a prompt and returns its id
func (c *RetellClient) CreateLLM(ctx context.Context, prompt string) (string, error) {
	body := createLLMRequest{GeneralPrompt: prompt}

	var resp createLLMResponse
	if err := c.postJSON(ctx, c.baseURL+"/create-retell-llm", c.apiKey, body, &resp, 201, "retell", "create-llm"); err != nil {
		return "", err
	}

	return resp.LLMID, nil
}

type responseEngine struct {
	LLMID string `json:"llm_id"`
	Type  string `json:"type"`
}

type createAgentRequest struct {
	ResponseEngine responseEngine `json:"response_engine"`
	VoiceID        string         `json:"voice_id"`
}

type createAgentResponse struct {
	AgentID string `json:"agent_id"`
}

// CreateAgent provisions an agent bound to a reasoning resource and a voice
func (c *RetellClient) CreateAgent(ctx context.Context, llmID, voiceID string) (string, error) {
	body := createAgentRequest{
		ResponseEngine: responseEngine{
			LLMID: llmID,
			Type:  "retell-llm",
		},
		VoiceID: voiceID,
	}

	var resp createAgentResponse
	if err := c.postJSON(ctx, c.baseURL+"/create-agent", c.apiKey, body, &resp, 201, "retell", "create-agent"); err != nil {
		return "", err
	}

	return resp.AgentID, nil
}

type createWebCallRequest struct {
	AgentID string `json:"agent_id"`
}

type createWebCallResponse struct {
	AccessToken string `json:"access_token"`
}

// CreateWebCall requests an ephemeral web-call session for an agent and
// returns its access token
func (c *RetellClient) CreateWebCall(ctx context.Context, agentID string) (string, error) {
	body := createWebCallRequest{AgentID: agentID}

	var resp createWebCallResponse
	if err := c.postJSON(ctx, c.baseURL+"/v2/create-web-call", c.apiKey, body, &resp, 201, "retell", "create-web-call"); err != nil {
		return "", err
	}

	return resp.AccessToken, nil
}
