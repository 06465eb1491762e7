package narration

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"journey-narrator/internal/domain/entity"
	wfmodel "journey-narrator/internal/workflow/model"
	"journey-narrator/internal/workflow/node"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/metrics"
	"journey-narrator/pkg/tracer"
)

// segmentInvoker 片段请求（由 chain.SegmentChain 实现）
type segmentInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.SegmentGenerateInput) (*wfmodel.SegmentGenerateOutput, error)
}

// SegmentRequest 生成单个片段所需的全部输入
type SegmentRequest struct {
	Journey       *entity.Journey
	Index         int
	TotalEstimate int
	ChapterGoal   string
	// PriorText 上一片段的完整文本，首个片段为空
	PriorText string
}

// SegmentGenerator 生成单章叙述文本。
// 与大纲不同，失败不会被掩盖为占位文本，而是以 *PipelineError 交给编排器处理。
type SegmentGenerator struct {
	chain        segmentInvoker
	options      wfmodel.GenerationOptions
	sizer        Sizer
	contextChars int
}

// NewSegmentGenerator 创建片段生成器
func NewSegmentGenerator(chain segmentInvoker, options wfmodel.GenerationOptions, sizer Sizer, contextChars int) *SegmentGenerator {
	if contextChars <= 0 {
		contextChars = DefaultContextChars
	}
	return &SegmentGenerator{chain: chain, options: options, sizer: sizer, contextChars: contextChars}
}

// GenerateSegment 生成第 req.Index 个片段的文本
func (g *SegmentGenerator) GenerateSegment(ctx context.Context, req SegmentRequest) (entity.Segment, error) {
	ctx, span := tracer.Start(ctx, "narration.segment")
	defer span.End()
	span.SetAttributes(attribute.Int("segment.index", req.Index))

	start := time.Now()
	out, err := g.chain.Invoke(ctx, g.buildInput(req))
	metrics.SegmentGenerationDuration.Observe(time.Since(start).Seconds())
	if err == nil && (out == nil || strings.TrimSpace(out.Content) == "") {
		err = node.ErrEmptyResponse
	}
	if err != nil {
		perr := newStageError(StageSegment, req.Index, err)
		tracer.Fail(span, perr)
		return entity.Segment{}, perr
	}

	logger.Debug(ctx, "segment text generated",
		"index", req.Index,
		"words", node.CountWords(out.Content),
		"prompt_tokens", out.Meta.PromptTokens,
		"completion_tokens", out.Meta.CompletionTokens,
	)
	return entity.Segment{Index: req.Index, Text: out.Content}, nil
}

func (g *SegmentGenerator) buildInput(req SegmentRequest) *wfmodel.SegmentGenerateInput {
	window := ""
	if req.Index > 1 {
		window = ContextWindow(req.PriorText, g.contextChars)
	}
	return &wfmodel.SegmentGenerateInput{
		JourneyDescription: req.Journey.Describe(),
		StyleInstruction:   ResolveStyleInstruction(req.Journey.Style),
		Index:              req.Index,
		TotalEstimate:      req.TotalEstimate,
		ChapterGoal:        req.ChapterGoal,
		ContextBlock:       buildContextBlock(req.Index, window),
		TargetWords:        g.sizer.WordsPerSegment(),
		GenerationOptions:  g.options,
	}
}
