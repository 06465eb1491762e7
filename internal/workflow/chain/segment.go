package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	llmctx "journey-narrator/internal/domain/service"
	wfmodel "journey-narrator/internal/workflow/model"
	"journey-narrator/internal/workflow/node"
	workflowport "journey-narrator/internal/workflow/port"
	workflowprompt "journey-narrator/internal/workflow/prompt"
)

type SegmentChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
}

func NewSegmentChain(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry) *SegmentChain {
	if registry == nil {
		registry = workflowprompt.NewRegistry()
	}
	return &SegmentChain{factory: factory, registry: registry}
}

// Invoke 生成一个片段的叙述文本；空回复返回 node.ErrEmptyResponse
func (c *SegmentChain) Invoke(ctx context.Context, in *wfmodel.SegmentGenerateInput) (*wfmodel.SegmentGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if in.Index <= 0 {
		return nil, fmt.Errorf("index must be positive")
	}
	if in.TargetWords <= 0 {
		return nil, fmt.Errorf("target_words is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, llmctx.WorkflowSegment, in.Provider)
	msgs, err := c.formatMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := generateOnce(ctx, c.factory, msgs, in.GenerationOptions)
	if err != nil {
		return nil, err
	}
	if outMsg.Role != "" && outMsg.Role != schema.Assistant {
		return nil, fmt.Errorf("%w: %q", node.ErrUnexpectedRole, outMsg.Role)
	}

	content := node.CleanNarration(outMsg.Content)
	if content == "" {
		return nil, node.ErrEmptyResponse
	}
	return &wfmodel.SegmentGenerateOutput{
		Content: content,
		Meta:    wfmodel.UsageFromMessage(outMsg, in.GenerationOptions),
	}, nil
}

func (c *SegmentChain) formatMessages(ctx context.Context, in *wfmodel.SegmentGenerateInput) ([]*schema.Message, error) {
	tpl, err := c.registry.ChatTemplate(workflowprompt.PromptSegmentV1)
	if err != nil {
		return nil, err
	}
	total := in.TotalEstimate
	if total < in.Index {
		total = in.Index
	}
	vars := map[string]any{
		"journey":           strings.TrimSpace(in.JourneyDescription),
		"style_instruction": strings.TrimSpace(in.StyleInstruction),
		"index":             in.Index,
		"total":             total,
		"chapter_goal":      strings.TrimSpace(in.ChapterGoal),
		"context_block":     strings.TrimSpace(in.ContextBlock),
		"target_words":      in.TargetWords,
	}
	return tpl.Format(ctx, vars)
}
