package config

import "time"

// LLMConfig represents the configuration for the categorization delegate
type LLMConfig struct {
	Enabled  bool
	Provider string
	Timeout  time.Duration
}

// BreakerConfig configures the circuit breaker wrapped around the delegate
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// ServerConfig configures the SMTP content filter
type ServerConfig struct {
	FilterType    string
	ListenAddress string
	PostfixAddr   string
	BlockPhishing bool
	SubjectPrefix string
	Timeout       time.Duration
	Headers       HeaderConfig
}

// HeaderConfig names the headers written onto triaged messages
type HeaderConfig struct {
	Category     string
	Confidence   string
	SecurityRisk string
	Reason       string
	Threats      string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// TriageConfig holds service level settings
type TriageConfig struct {
	VIPDomains       []string
	BatchConcurrency int
}

// RulesConfig overrides the rule engine keyword tables
type RulesConfig struct {
	MeetingKeywords    []string
	DeliveryKeywords   []string
	CarrierSenders     []string
	ImportanceKeywords []string
	ShortenerHosts     []string
	InfoRequestTerms   []string
}

// CacheConfig selects and configures the delegate verdict cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisKeyPrefix   string
}

// IMAPConfig configures filing of imported messages into category folders
type IMAPConfig struct {
	Address      string
	Username     string
	Password     string
	Insecure     bool
	FolderPrefix string
	DryRun       bool
}

// GetLLM returns the delegate configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Enabled:  c.GetBool("llm.enabled"),
		Provider: c.GetString("llm.provider"),
		Timeout:  c.durationOr("llm.timeout", 30*time.Second),
	}
}

// GetBreaker returns the circuit breaker configuration
func (c *Config) GetBreaker() BreakerConfig {
	return BreakerConfig{
		Enabled:          c.GetBool("breaker.enabled"),
		MaxRequests:      uint32(c.GetInt("breaker.max_requests")),
		Interval:         c.durationOr("breaker.interval", time.Minute),
		Timeout:          c.durationOr("breaker.timeout", 30*time.Second),
		FailureThreshold: uint32(c.GetInt("breaker.failure_threshold")),
	}
}

// GetServer returns the content filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:    c.GetString("server.filter_type"),
		ListenAddress: c.GetString("server.listen_address"),
		PostfixAddr:   c.GetString("server.postfix_address"),
		BlockPhishing: c.GetBool("server.block_phishing"),
		SubjectPrefix: c.GetString("server.subject_prefix"),
		Timeout:       c.durationOr("server.timeout", 30*time.Second),
		Headers: HeaderConfig{
			Category:     c.GetString("server.headers.category"),
			Confidence:   c.GetString("server.headers.confidence"),
			SecurityRisk: c.GetString("server.headers.security_risk"),
			Reason:       c.GetString("server.headers.reason"),
			Threats:      c.GetString("server.headers.threats"),
		},
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetTriage returns the triage service configuration
func (c *Config) GetTriage() TriageConfig {
	return TriageConfig{
		VIPDomains:       c.GetStringSlice("triage.vip_domains"),
		BatchConcurrency: c.GetInt("triage.batch_concurrency"),
	}
}

// GetRules returns the rule table overrides
func (c *Config) GetRules() RulesConfig {
	return RulesConfig{
		MeetingKeywords:    c.GetStringSlice("rules.meeting_keywords"),
		DeliveryKeywords:   c.GetStringSlice("rules.delivery_keywords"),
		CarrierSenders:     c.GetStringSlice("rules.carrier_senders"),
		ImportanceKeywords: c.GetStringSlice("rules.importance_keywords"),
		ShortenerHosts:     c.GetStringSlice("rules.shortener_hosts"),
		InfoRequestTerms:   c.GetStringSlice("rules.info_request_terms"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              c.durationOr("cache.ttl", 24*time.Hour),
		CleanupFrequency: c.durationOr("cache.cleanup_frequency", time.Hour),
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisAddr:        c.GetString("cache.redis_addr"),
		RedisPassword:    c.GetString("cache.redis_password"),
		RedisDB:          c.GetInt("cache.redis_db"),
		RedisKeyPrefix:   c.GetString("cache.redis_key_prefix"),
	}
}

// GetIMAP returns the IMAP filing configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Address:      c.GetString("imap.address"),
		Username:     c.GetString("imap.username"),
		Password:     c.GetString("imap.password"),
		Insecure:     c.GetBool("imap.insecure"),
		FolderPrefix: c.GetString("imap.folder_prefix"),
		DryRun:       c.GetBool("imap.dry_run"),
	}
}

func (c *Config) durationOr(key string, fallback time.Duration) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil {
		return fallback
	}
	return d
}
