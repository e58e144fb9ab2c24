package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/email-triage/internal/adapters/llmresponse"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// GeminiClient categorizes emails with Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(llmresponse.SystemPrompt))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.modelName
}

// Categorize asks the model for a category verdict
func (c *GeminiClient) Categorize(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	body := c.textProcessor.PrepareBody(email.Body, c.maxBodySize)

	resp, err := c.model.GenerateContent(ctx, genai.Text(llmresponse.Prompt(email, body)))
	if err != nil {
		return nil, llmresponse.Unavailable("gemini", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response from Gemini", core.ErrMalformedResponse)
	}

	result, err := llmresponse.Parse(text)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini categorization",
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
