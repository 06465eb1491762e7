package eino

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"

	llmctx "journey-narrator/internal/domain/service"
	"journey-narrator/pkg/metrics"
)

func TestChatModelCallbackRecordsSuccess(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := llmctx.WithWorkflowProvider(context.Background(), llmctx.WorkflowSegment, "cb-success")

	calls := metrics.LLMCallTotal.WithLabelValues(llmctx.WorkflowSegment, "cb-success", "gpt-test", "success")
	tokens := metrics.LLMTokensUsed.WithLabelValues(llmctx.WorkflowSegment, "cb-success", "gpt-test", "completion")
	before, tokensBefore := testutil.ToFloat64(calls), testutil.ToFloat64(tokens)

	ctx = h.OnStart(ctx, nil, &model.CallbackInput{Config: &model.Config{Model: "gpt-test"}})
	if elapsedSeconds(ctx) < 0 || modelFromContext(ctx) != "gpt-test" {
		t.Fatalf("start state not recorded")
	}
	h.OnEnd(ctx, nil, &model.CallbackOutput{
		Message:    schema.AssistantMessage("ok", nil),
		TokenUsage: &model.TokenUsage{PromptTokens: 120, CompletionTokens: 80},
	})

	if got := testutil.ToFloat64(calls) - before; got != 1 {
		t.Fatalf("expected one successful call, got %v", got)
	}
	if got := testutil.ToFloat64(tokens) - tokensBefore; got != 80 {
		t.Fatalf("expected 80 completion tokens, got %v", got)
	}
}

func TestChatModelCallbackRecordsError(t *testing.T) {
	h := newChatModelCallbackHandler()
	ctx := llmctx.WithWorkflowProvider(context.Background(), llmctx.WorkflowOutline, "cb-error")
	failed := metrics.LLMCallTotal.WithLabelValues(llmctx.WorkflowOutline, "cb-error", "gpt-test", "error")
	before := testutil.ToFloat64(failed)

	ctx = h.OnStart(ctx, nil, &model.CallbackInput{Config: &model.Config{Model: "gpt-test"}})
	h.OnError(ctx, nil, errors.New("502 bad gateway"))

	if got := testutil.ToFloat64(failed) - before; got != 1 {
		t.Fatalf("expected one failed call, got %v", got)
	}
}
