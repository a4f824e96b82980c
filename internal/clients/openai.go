package clients

import (
	"context"
	"fmt"
	"time"
)

// promptInstruction is the system message sent with every prompt-generation
// request. The generated prompt drives the voice agent's customer side.
const promptInstruction = "Create a detailed prompt for a customer service simulation based on the following conversation. The prompt should help generate realistic customer responses that match the conversation flow and context. Consider the sequence of interactions and maintain consistency with the original conversation."

// OpenAIClient generates simulation prompts via the chat completions API
type OpenAIClient struct {
	caller
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAIClient creates a new text-generation client
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration, opts ...Option) *OpenAIClient {
	return &OpenAIClient{
		caller:  newCaller(timeout, opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GeneratePrompt submits a conversation transcript and returns the generated
// simulation prompt
func (c *OpenAIClient) GeneratePrompt(ctx context.Context, transcript string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: promptInstruction},
			{Role: "user", Content: transcript},
		},
	}

	var resp chatResponse
	if err := c.postJSON(ctx, c.baseURL+"/v1/chat/completions", c.apiKey, body, &resp, 200, "openai", "chat-completion"); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat-completion: response carried no choices: %w", ErrUpstream)
	}

	return resp.Choices[0].Message.Content, nil
}
