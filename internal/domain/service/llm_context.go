// Package service 定义跨层共享的领域上下文
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
	llmCtxKeyJourney  llmCtxKey = "llm_journey"
)

// 叙述流水线中的 LLM 工作流名称
const (
	WorkflowOutline = "outline"
	WorkflowSegment = "segment"
)

const unknown = "unknown"

// WithWorkflow 为 LLM 调用标记所属工作流（用于指标与日志）
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return withTrimmed(ctx, llmCtxKeyWorkflow, workflow)
}

// WithProvider 标记 LLM 提供商
func WithProvider(ctx context.Context, provider string) context.Context {
	return withTrimmed(ctx, llmCtxKeyProvider, provider)
}

// WithJourney 标记所属旅程
func WithJourney(ctx context.Context, journeyID string) context.Context {
	return withTrimmed(ctx, llmCtxKeyJourney, journeyID)
}

func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	return WithProvider(WithWorkflow(ctx, workflow), provider)
}

func WorkflowFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyWorkflow, unknown)
}

func ProviderFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyProvider, unknown)
}

// JourneyFromContext 未标记时返回空字符串
func JourneyFromContext(ctx context.Context) string {
	return valueOr(ctx, llmCtxKeyJourney, "")
}

func withTrimmed(ctx context.Context, key llmCtxKey, value string) context.Context {
	if ctx == nil {
		return nil
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOr(ctx context.Context, key llmCtxKey, def string) string {
	if ctx == nil {
		return def
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
