package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/bedrock"
	"github.com/mikey/email-triage/internal/adapters/breaker"
	"github.com/mikey/email-triage/internal/adapters/gemini"
	"github.com/mikey/email-triage/internal/adapters/openai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

// LLMFactory creates the categorization delegate
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateCategorizer returns the configured delegate behind a circuit breaker,
// or core.NoopCategorizer when the delegate is disabled
func (f *LLMFactory) CreateCategorizer() (core.Categorizer, error) {
	llmConfig := f.cfg.GetLLM()
	if !llmConfig.Enabled {
		f.logger.Info("Categorization delegate disabled, using rules only")
		return core.NoopCategorizer{}, nil
	}

	delegate, err := f.createProvider(llmConfig.Provider)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Categorization delegate enabled",
		zap.String("provider", llmConfig.Provider),
		zap.String("model", delegate.Model()))

	breakerConfig := f.cfg.GetBreaker()
	if !breakerConfig.Enabled {
		return delegate, nil
	}
	return breaker.New(delegate, breaker.Settings{
		MaxRequests:      breakerConfig.MaxRequests,
		Interval:         breakerConfig.Interval,
		Timeout:          breakerConfig.Timeout,
		FailureThreshold: breakerConfig.FailureThreshold,
		CallTimeout:      llmConfig.Timeout,
	}, f.logger), nil
}

func (f *LLMFactory) createProvider(provider string) (core.Categorizer, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateCategorizer()
	case "gemini":
		geminiConfig := f.cfg.GetGemini()
		if geminiConfig.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		return gemini.NewFactory(
			geminiConfig.APIKey,
			geminiConfig.ModelName,
			geminiConfig.MaxTokens,
			geminiConfig.Temperature,
			geminiConfig.TopP,
			geminiConfig.MaxBodySize,
			f.logger,
			f.textProcessor,
		).CreateCategorizer()
	case "openai":
		if f.cfg.GetOpenAI().APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateCategorizer()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
