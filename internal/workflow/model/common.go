package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// LLMUsageMeta 单次调用的用量信息
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Temperature      float64
	GeneratedAt      time.Time
}

// GenerationOptions 单次请求的模型参数，零值表示沿用提供商默认
type GenerationOptions struct {
	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
	// Timeout 单次调用等待上限
	Timeout time.Duration
}

// UsageFromMessage 从模型回复中提取 token 用量
func UsageFromMessage(msg *schema.Message, opts GenerationOptions) LLMUsageMeta {
	meta := LLMUsageMeta{
		Provider:    opts.Provider,
		Model:       opts.Model,
		GeneratedAt: time.Now(),
	}
	if opts.Temperature != nil {
		meta.Temperature = float64(*opts.Temperature)
	}
	if msg != nil && msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		meta.PromptTokens = msg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = msg.ResponseMeta.Usage.CompletionTokens
	}
	return meta
}
