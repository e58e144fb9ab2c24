package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	llm := cfg.GetLLM()
	assert.False(t, llm.Enabled)
	assert.Equal(t, 30*time.Second, llm.Timeout)

	cache := cfg.GetCache()
	assert.Equal(t, "memory", cache.Type)
	assert.Equal(t, 24*time.Hour, cache.TTL)
	assert.Equal(t, time.Hour, cache.CleanupFrequency)

	assert.Equal(t, 8, cfg.GetTriage().BatchConcurrency)
	assert.Empty(t, cfg.GetRules().MeetingKeywords)
	assert.Equal(t, "X-Triage-Category", cfg.GetString("server.headers.category"))
	assert.Equal(t, uint32(5), cfg.GetBreaker().FailureThreshold)
	assert.Equal(t, "Triage", cfg.GetIMAP().FolderPrefix)

	server := cfg.GetServer()
	assert.Equal(t, "postfix", server.FilterType)
	assert.Equal(t, "localhost:10026", server.PostfixAddr)
	assert.False(t, server.BlockPhishing)
	assert.Equal(t, "[PHISHING] ", server.SubjectPrefix)
	assert.Equal(t, "X-Triage-Threats", server.Headers.Threats)
	assert.Equal(t, 30*time.Second, server.Timeout)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  enabled: true
  provider: gemini
cache:
  type: redis
  ttl: 2h
triage:
  vip_domains: [example.com, partner.org]
rules:
  meeting_keywords: [huddle]
`), 0o600))

	v := NewEmptyViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := NewFromViper(v)

	assert.True(t, cfg.GetLLM().Enabled)
	assert.Equal(t, "gemini", cfg.GetLLM().Provider)
	assert.Equal(t, "redis", cfg.GetCache().Type)
	assert.Equal(t, 2*time.Hour, cfg.GetCache().TTL)
	assert.Equal(t, []string{"example.com", "partner.org"}, cfg.GetTriage().VIPDomains)
	assert.Equal(t, []string{"huddle"}, cfg.GetRules().MeetingKeywords)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  block_phishing: true\n"), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.GetServer().BlockPhishing)
	assert.Equal(t, "memory", cfg.GetCache().Type)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	v := viper.New()
	v.Set("cache.ttl", "soon")
	cfg := NewFromViper(v)

	assert.Equal(t, 24*time.Hour, cfg.GetCache().TTL)
}
