// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Narration     NarrationConfig     `yaml:"narration" mapstructure:"narration"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline"`
	Audio         AudioConfig         `yaml:"audio" mapstructure:"audio"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Messaging     MessagingConfig     `yaml:"messaging" mapstructure:"messaging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
//
// WriteTimeout 为 0 表示不限制：SSE 叙述流与旅程时长同级，可能持续数小时。
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// NarrationConfig 叙述生成参数
type NarrationConfig struct {
	// SegmentSeconds 每个故事片段对应的目标朗读时长
	SegmentSeconds int `yaml:"segment_seconds" mapstructure:"segment_seconds"`
	// WordsPerMinute 叙述语速
	WordsPerMinute int `yaml:"words_per_minute" mapstructure:"words_per_minute"`
	// ContextChars 续写提示中携带的上一片段尾部字符数
	ContextChars int `yaml:"context_chars" mapstructure:"context_chars"`

	Outline GenerationParams `yaml:"outline" mapstructure:"outline"`
	Segment GenerationParams `yaml:"segment" mapstructure:"segment"`
}

// GenerationParams 单类 LLM 请求参数
type GenerationParams struct {
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// PipelineConfig 流水线调度配置
type PipelineConfig struct {
	MaxRetries           int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBackoff         BackoffConfig `yaml:"retry_backoff" mapstructure:"retry_backoff"`
	MaxInflightSynthesis int           `yaml:"max_inflight_synthesis" mapstructure:"max_inflight_synthesis"`
	WorkerPoolSize       int           `yaml:"worker_pool_size" mapstructure:"worker_pool_size"`
	SegmentFailurePolicy string        `yaml:"segment_failure_policy" mapstructure:"segment_failure_policy"`
	AudioFailurePolicy   string        `yaml:"audio_failure_policy" mapstructure:"audio_failure_policy"`
	EventBuffer          int           `yaml:"event_buffer" mapstructure:"event_buffer"`
}

// BackoffConfig 退避配置
type BackoffConfig struct {
	Initial    time.Duration `yaml:"initial" mapstructure:"initial"`
	Max        time.Duration `yaml:"max" mapstructure:"max"`
	Multiplier float64       `yaml:"multiplier" mapstructure:"multiplier"`
}

// AudioConfig 音频合成配置
type AudioConfig struct {
	// Provider 合成后端：silence（占位静音）/ openai
	Provider       string             `yaml:"provider" mapstructure:"provider"`
	SampleRate     int                `yaml:"sample_rate" mapstructure:"sample_rate"`
	Channels       int                `yaml:"channels" mapstructure:"channels"`
	BitDepth       int                `yaml:"bit_depth" mapstructure:"bit_depth"`
	RequestTimeout time.Duration      `yaml:"request_timeout" mapstructure:"request_timeout"`
	DefaultVoice   string             `yaml:"default_voice" mapstructure:"default_voice"`
	OpenAI         OpenAISpeechConfig `yaml:"openai" mapstructure:"openai"`
}

// OpenAISpeechConfig OpenAI 兼容语音合成接口配置
type OpenAISpeechConfig struct {
	BaseURL string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey  string  `yaml:"api_key" mapstructure:"api_key"`
	Model   string  `yaml:"model" mapstructure:"model"`
	Speed   float64 `yaml:"speed" mapstructure:"speed"`
}

// NeedsRedis 是否有组件依赖 Redis
func (c *Config) NeedsRedis() bool {
	return c.Messaging.RedisStream.Enabled || c.Security.RateLimit.Enabled
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// MessagingConfig 消息队列配置
type MessagingConfig struct {
	RedisStream RedisStreamConfig `yaml:"redis_stream" mapstructure:"redis_stream"`
	NATS        NATSConfig        `yaml:"nats" mapstructure:"nats"`
}

// NATSConfig 片段事件 NATS 发布配置
type NATSConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Servers        []string      `yaml:"servers" mapstructure:"servers"`
	SubjectPrefix  string        `yaml:"subject_prefix" mapstructure:"subject_prefix"`
	Username       string        `yaml:"username" mapstructure:"username"`
	Password       string        `yaml:"password" mapstructure:"password"`
	Token          string        `yaml:"token" mapstructure:"token"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// RedisStreamConfig 片段事件 Redis Stream 配置
type RedisStreamConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Stream  string `yaml:"stream" mapstructure:"stream"`
	MaxLen  int    `yaml:"max_len" mapstructure:"max_len"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt" mapstructure:"jwt"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig 旅程启动限流（依赖 Redis）
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" mapstructure:"enabled"`
	JourneysPerWindow int           `yaml:"journeys_per_window" mapstructure:"journeys_per_window"`
	Window            time.Duration `yaml:"window" mapstructure:"window"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Secret  string `yaml:"secret" mapstructure:"secret"`
	Issuer  string `yaml:"issuer" mapstructure:"issuer"`
	// JWKSURL 非空时改用远端 JWKS 验证 RS256 令牌，Secret 不再生效
	JWKSURL string `yaml:"jwks_url" mapstructure:"jwks_url"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
