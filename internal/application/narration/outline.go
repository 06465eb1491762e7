package narration

import (
	"context"
	"math"

	"journey-narrator/internal/domain/entity"
	wfmodel "journey-narrator/internal/workflow/model"
	"journey-narrator/internal/workflow/node"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/metrics"
	"journey-narrator/pkg/tracer"
)

const (
	// OutlinePadding 大纲章节不足时的补齐文本
	OutlinePadding = "Continue the journey's story, developing the current chapter."
	// OutlinePlaceholder 大纲整体失败时每章使用的占位文本
	OutlinePlaceholder = "Continue the immersive narrative of the journey."
)

// outlineInvoker 大纲请求（由 chain.OutlineChain 实现）
type outlineInvoker interface {
	Invoke(ctx context.Context, in *wfmodel.OutlineGenerateInput) (*wfmodel.OutlineGenerateOutput, error)
}

// OutlineGenerator 生成覆盖整段旅程的逐章大纲。
// 任何失败都在内部降级为占位大纲，调用方总能拿到长度正好为 segmentCount 的结果。
type OutlineGenerator struct {
	chain   outlineInvoker
	options wfmodel.GenerationOptions
}

// NewOutlineGenerator 创建大纲生成器
func NewOutlineGenerator(chain outlineInvoker, options wfmodel.GenerationOptions) *OutlineGenerator {
	return &OutlineGenerator{chain: chain, options: options}
}

// GenerateOutline 返回恰好 segmentCount 条章节概要
func (g *OutlineGenerator) GenerateOutline(ctx context.Context, journey *entity.Journey, segmentCount int) []string {
	if segmentCount < 1 {
		segmentCount = 1
	}
	ctx, span := tracer.Start(ctx, "narration.outline")
	defer span.End()

	outline, err := g.generate(ctx, journey, segmentCount)
	if err != nil {
		perr := newStageError(StageOutline, 0, err)
		tracer.Fail(span, perr)
		metrics.OutlineFallbackTotal.Inc()
		logger.Warn(ctx, "outline generation failed, using placeholder outline",
			"segment_count", segmentCount,
			"malformed", perr.Malformed,
			"timeout", perr.Timeout,
			"error", err.Error(),
		)
		return FallbackOutline(segmentCount)
	}
	return outline
}

func (g *OutlineGenerator) generate(ctx context.Context, journey *entity.Journey, segmentCount int) ([]string, error) {
	out, err := g.chain.Invoke(ctx, &wfmodel.OutlineGenerateInput{
		JourneyDescription: journey.Describe(),
		StartLabel:         journey.StartLabel,
		EndLabel:           journey.EndLabel,
		TravelMode:         string(journey.TravelMode),
		DurationMinutes:    int(math.Round(journey.TotalDurationSeconds / 60)),
		StyleInstruction:   ResolveStyleInstruction(journey.Style),
		ChapterCount:       segmentCount,
		GenerationOptions:  g.options,
	})
	if err != nil {
		return nil, err
	}

	chapters, err := node.ParseStringArray(out.Raw)
	if err != nil {
		return nil, err
	}
	if len(chapters) != segmentCount {
		logger.Debug(ctx, "outline length adjusted", "requested", segmentCount, "received", len(chapters))
	}
	return FitOutline(chapters, segmentCount), nil
}

// FitOutline 补齐或截断到 n 条
func FitOutline(chapters []string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(chapters) {
			out = append(out, chapters[i])
		} else {
			out = append(out, OutlinePadding)
		}
	}
	return out
}

// FallbackOutline n 条占位大纲
func FallbackOutline(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = OutlinePlaceholder
	}
	return out
}
