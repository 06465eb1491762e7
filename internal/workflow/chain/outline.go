package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	llmctx "journey-narrator/internal/domain/service"
	wfmodel "journey-narrator/internal/workflow/model"
	workflowport "journey-narrator/internal/workflow/port"
	workflowprompt "journey-narrator/internal/workflow/prompt"
)

type OutlineChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
}

func NewOutlineChain(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry) *OutlineChain {
	if registry == nil {
		registry = workflowprompt.NewRegistry()
	}
	return &OutlineChain{factory: factory, registry: registry}
}

// Invoke 请求一次大纲，返回未解析的模型输出
func (c *OutlineChain) Invoke(ctx context.Context, in *wfmodel.OutlineGenerateInput) (*wfmodel.OutlineGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if in.ChapterCount <= 0 {
		return nil, fmt.Errorf("chapter_count is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, llmctx.WorkflowOutline, in.Provider)
	msgs, err := c.formatMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := generateOnce(ctx, c.factory, msgs, in.GenerationOptions)
	if err != nil {
		return nil, err
	}
	return &wfmodel.OutlineGenerateOutput{
		Raw:  outMsg.Content,
		Meta: wfmodel.UsageFromMessage(outMsg, in.GenerationOptions),
	}, nil
}

func (c *OutlineChain) formatMessages(ctx context.Context, in *wfmodel.OutlineGenerateInput) ([]*schema.Message, error) {
	tpl, err := c.registry.ChatTemplate(workflowprompt.PromptOutlineV1)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"journey":           strings.TrimSpace(in.JourneyDescription),
		"style_instruction": strings.TrimSpace(in.StyleInstruction),
		"chapter_count":     in.ChapterCount,
		"start_label":       strings.TrimSpace(in.StartLabel),
		"end_label":         strings.TrimSpace(in.EndLabel),
		"travel_mode":       strings.TrimSpace(in.TravelMode),
		"duration_minutes":  in.DurationMinutes,
	}
	return tpl.Format(ctx, vars)
}
