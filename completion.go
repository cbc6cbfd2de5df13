package studybuddy

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// ChatMessage is one turn of a conversation sent to the model
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TextCompleter is the text-generation capability the question generator
// depends on. The model's output is untrusted free-form text.
type TextCompleter interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// ChatCompleter is the multi-turn variant used by the chat engine
type ChatCompleter interface {
	ChatComplete(ctx context.Context, model string, messages []ChatMessage) (string, error)
}

// LLMClient talks to OpenAI and Groq through their chat completion APIs.
// Groq exposes an OpenAI-compatible endpoint, so both sides use the same
// client with a different base URL.
type LLMClient struct {
	openaiClient *openai.Client
	groqClient   *openai.Client
	temperature  float32
}

// NewLLMClient creates a client for the configured API keys
func NewLLMClient(settings *Settings) *LLMClient {
	groqConfig := openai.DefaultConfig(settings.GroqAPIKey)
	groqConfig.BaseURL = groqBaseURL

	return &LLMClient{
		openaiClient: openai.NewClient(settings.OpenAIAPIKey),
		groqClient:   openai.NewClientWithConfig(groqConfig),
		temperature:  settings.Temperature,
	}
}

// clientFor routes "gpt*" models to OpenAI and everything else to Groq
func (c *LLMClient) clientFor(model string) *openai.Client {
	if strings.HasPrefix(model, "gpt") {
		return c.openaiClient
	}
	return c.groqClient
}

// Complete sends a single-prompt request and returns the raw response text
func (c *LLMClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	return c.ChatComplete(ctx, model, []ChatMessage{{Role: RoleUser, Content: prompt}})
}

// ChatComplete sends a full conversation and returns the model's reply
func (c *LLMClient) ChatComplete(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.clientFor(model).CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       model,
			Messages:    chatMessages,
			Temperature: c.temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}

	return resp.Choices[0].Message.Content, nil
}
