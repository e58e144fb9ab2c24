package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/llmresponse"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// OpenAIClient categorizes emails with the OpenAI chat completion API
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.modelName
}

// Categorize asks the model for a category verdict
func (c *OpenAIClient) Categorize(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	body := c.textProcessor.PrepareBody(email.Body, c.maxBodySize)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: llmresponse.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: llmresponse.Prompt(email, body),
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Debug("OpenAI API error",
				zap.Int("status", apiErr.HTTPStatusCode),
				zap.String("type", apiErr.Type))
		}
		return nil, llmresponse.Unavailable("openai", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from OpenAI", core.ErrMalformedResponse)
	}

	result, err := llmresponse.Parse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("OpenAI categorization",
		zap.String("response_id", resp.ID),
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}
