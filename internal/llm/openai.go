package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/chadiek/pitchcoach/internal/session"
)

// estimateMultiplier scales a word count into a rough token count when the
// API response carries no usage figures.
const estimateMultiplier = 1.3

// OpenAIClient generates persona replies through the OpenAI chat completions
// API with a fixed per-reply token ceiling.
type OpenAIClient struct {
	client         *openai.Client
	Model          string
	MaxReplyTokens int
}

// NewOpenAIClient constructs a client. baseURL overrides the API endpoint and
// is empty in production.
func NewOpenAIClient(apiKey, model string, maxReplyTokens int, baseURL string) *OpenAIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxReplyTokens <= 0 {
		maxReplyTokens = 256
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		Model:          model,
		MaxReplyTokens: maxReplyTokens,
	}
}

// EstimateTokens is the fallback accounting strategy: word count scaled by a
// fixed multiplier. Used only when the API reports no usage.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * estimateMultiplier)
}

// Complete sends the bounded history to the model and returns the reply text
// plus the tokens consumed by this call. Token figures come from the API's
// usage block when present; otherwise a word-count estimate of the last user
// turn plus the reply is used and the degraded accounting is logged.
func (c *OpenAIClient) Complete(ctx context.Context, turns []session.Turn) (string, int, error) {
	if len(turns) == 0 {
		return "", 0, fmt.Errorf("openai: empty history")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.Model,
		Messages:  messages,
		MaxTokens: c.MaxReplyTokens,
	})
	if err != nil {
		return "", 0, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("openai: empty choices")
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", 0, fmt.Errorf("openai: empty reply content")
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		lastUser := ""
		for i := len(turns) - 1; i >= 0; i-- {
			if turns[i].Role == session.RoleUser {
				lastUser = turns[i].Content
				break
			}
		}
		tokens = EstimateTokens(lastUser) + EstimateTokens(reply)
		log.Printf("openai: usage missing, estimated %d tokens for this call", tokens)
	} else {
		log.Printf("openai: tokens this call prompt=%d completion=%d total=%d",
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	}
	return reply, tokens, nil
}
