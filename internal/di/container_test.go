package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-triage/internal/adapters/mime"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
)

func TestBuildCLIContainer(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("cache.cleanup_frequency", "0s")
	cfg := config.NewFromViper(v)

	container, err := BuildCLIContainer(&CLIFlags{}, cfg)
	require.NoError(t, err)

	err = container.Invoke(func(service *core.TriageService, parser *mime.Parser, delegate core.Categorizer) {
		assert.IsType(t, core.NoopCategorizer{}, delegate)

		email, err := parser.ParseBytes([]byte("From: tracking@fedex.com\r\nSubject: Your package\r\n\r\nTracking number: 1234567890123\r\n"))
		require.NoError(t, err)

		res, err := service.AnalyzeEmail(context.Background(), email)
		require.NoError(t, err)
		assert.Equal(t, core.CategoryDeliveries, res.Result.Category)
	})
	require.NoError(t, err)
}

func TestBuildCLIContainer_BadProvider(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("llm.enabled", true)
	v.Set("llm.provider", "nope")

	container, err := BuildCLIContainer(&CLIFlags{}, config.NewFromViper(v))
	require.NoError(t, err)

	err = container.Invoke(func(*core.TriageService) {})
	assert.Error(t, err)
}
