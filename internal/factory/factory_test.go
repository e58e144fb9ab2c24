package factory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/breaker"
	"github.com/mikey/email-triage/internal/adapters/cache"
	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
)

func testConfig(settings map[string]interface{}) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestLLMFactory_Disabled(t *testing.T) {
	logger := zap.NewNop()
	f := NewLLMFactory(testConfig(nil), logger, utils.NewTextProcessor(logger))

	delegate, err := f.CreateCategorizer()
	require.NoError(t, err)
	assert.IsType(t, core.NoopCategorizer{}, delegate)
}

func TestLLMFactory_OpenAIWithBreaker(t *testing.T) {
	logger := zap.NewNop()
	f := NewLLMFactory(testConfig(map[string]interface{}{
		"llm.enabled":       true,
		"llm.provider":      "openai",
		"openai.api_key":    "test-key",
		"openai.model_name": "gpt-4o-mini",
	}), logger, utils.NewTextProcessor(logger))

	delegate, err := f.CreateCategorizer()
	require.NoError(t, err)
	assert.IsType(t, &breaker.Categorizer{}, delegate)
	assert.Equal(t, "gpt-4o-mini", delegate.Model())
}

func TestLLMFactory_Errors(t *testing.T) {
	logger := zap.NewNop()
	tests := []map[string]interface{}{
		{"llm.enabled": true, "llm.provider": "unknown"},
		{"llm.enabled": true, "llm.provider": "openai"},
		{"llm.enabled": true, "llm.provider": "gemini"},
	}
	for _, settings := range tests {
		f := NewLLMFactory(testConfig(settings), logger, utils.NewTextProcessor(logger))
		_, err := f.CreateCategorizer()
		assert.Error(t, err, settings["llm.provider"])
	}
}

func TestCacheFactory(t *testing.T) {
	logger := zap.NewNop()

	memory, err := NewCacheFactory(testConfig(map[string]interface{}{"cache.cleanup_frequency": "0s"}), logger).CreateCacheRepository()
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, memory)

	mr := miniredis.RunT(t)
	redisRepo, err := NewCacheFactory(testConfig(map[string]interface{}{
		"cache.type":       "redis",
		"cache.redis_addr": mr.Addr(),
	}), logger).CreateCacheRepository()
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisCache{}, redisRepo)
	redisRepo.(*cache.RedisCache).Stop()

	_, err = NewCacheFactory(testConfig(map[string]interface{}{"cache.type": "etcd"}), logger).CreateCacheRepository()
	assert.Error(t, err)

	f := NewCacheFactory(testConfig(map[string]interface{}{"cache.enabled": false, "cache.ttl": "2h"}), logger)
	assert.False(t, f.IsCacheEnabled())
	assert.Equal(t, "2h0m0s", f.GetCacheTTL().String())
}

func TestTriageFactory_EngineOverrides(t *testing.T) {
	f := NewTriageFactory(testConfig(map[string]interface{}{
		"rules.meeting_keywords": []string{"huddle"},
	}), zap.NewNop())

	engine := f.CreateEngine()
	res := engine.Classify(&core.Email{Subject: "Quick huddle", Body: "see you there"})
	assert.Equal(t, core.CategoryMeetings, res.Category)

	res = engine.Classify(&core.Email{Subject: "Team meeting", Body: "see you there"})
	assert.NotEqual(t, core.CategoryMeetings, res.Category)
}

func TestTriageFactory_ServiceAppliesVIP(t *testing.T) {
	logger := zap.NewNop()
	cfg := testConfig(map[string]interface{}{"triage.vip_domains": []string{"board.example.com"}})
	tf := NewTriageFactory(cfg, logger)

	service := tf.CreateService(tf.CreateEngine(), core.NoopCategorizer{}, nil, tf.CreateVIPChecker(), false)
	res, err := service.AnalyzeEmail(context.Background(), &core.Email{
		Subject:     "Quarterly numbers",
		Body:        "Please review the attached.",
		SenderEmail: "ceo@board.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, core.CategoryImportant, res.Result.Category)
	assert.Equal(t, "Contains importance indicators", res.Result.Reasoning)
	assert.Equal(t, core.ImportanceMetadata{UrgencyLevel: "normal"}, res.Result.Metadata)
	assert.Equal(t, core.SourceRules, res.Source)
}

func TestFilterFactory(t *testing.T) {
	logger := zap.NewNop()
	tf := NewTriageFactory(testConfig(nil), logger)
	service := tf.CreateService(tf.CreateEngine(), nil, nil, nil, false)
	parser := tf.CreateParser(tf.CreateTextProcessor())

	postfix, err := NewFilterFactory(testConfig(nil), logger, service, parser).CreateEmailFilter()
	require.NoError(t, err)
	assert.IsType(t, &filter.PostfixFilter{}, postfix)

	cli, err := NewFilterFactory(testConfig(map[string]interface{}{"server.filter_type": "cli"}), logger, service, parser).CreateEmailFilter()
	require.NoError(t, err)
	assert.IsType(t, &filter.CliFilter{}, cli)

	_, err = NewFilterFactory(testConfig(map[string]interface{}{"server.filter_type": "milter"}), logger, service, parser).CreateEmailFilter()
	assert.Error(t, err)
}
