package gemini

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	apiKey        string
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Factory {
	return &Factory{
		apiKey:        apiKey,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateCategorizer creates a new GeminiClient
func (f *Factory) CreateCategorizer() (core.Categorizer, error) {
	return NewGeminiClient(
		context.Background(),
		f.apiKey,
		f.modelName,
		f.maxTokens,
		f.temperature,
		f.topP,
		f.maxBodySize,
		f.logger,
		f.textProcessor,
	)
}
