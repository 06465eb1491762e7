package narration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/entity"
	"journey-narrator/internal/domain/service"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/metrics"
	"journey-narrator/pkg/tracer"
)

// SegmentFallbackText 片段生成失败且策略为 substitute 时使用的文本
const SegmentFallbackText = "Continue the immersive narrative of the journey."

const (
	// publishTimeout 单个事件外部发布的最长等待
	publishTimeout = 2 * time.Second
	// relayBuffer 待发布事件队列长度，满时丢弃并告警
	relayBuffer = 64
)

// outlineGenerator 大纲生成（不返回错误）
type outlineGenerator interface {
	GenerateOutline(ctx context.Context, journey *entity.Journey, segmentCount int) []string
}

// segmentGenerator 片段生成（失败以 *PipelineError 返回）
type segmentGenerator interface {
	GenerateSegment(ctx context.Context, req SegmentRequest) (entity.Segment, error)
}

// taskSubmitter 执行合成任务的协程池（*ants.Pool 满足该接口）
type taskSubmitter interface {
	Submit(task func()) error
}

// Policy 编排器的失败处理与并发策略
type Policy struct {
	Retry                RetryPolicy
	SegmentFailure       string
	AudioFailure         string
	MaxInflightSynthesis int
	EventBuffer          int
}

// PolicyFromConfig 从流水线配置构造策略
func PolicyFromConfig(cfg config.PipelineConfig) Policy {
	return Policy{
		Retry:                RetryPolicy{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff},
		SegmentFailure:       cfg.SegmentFailurePolicy,
		AudioFailure:         cfg.AudioFailurePolicy,
		MaxInflightSynthesis: cfg.MaxInflightSynthesis,
		EventBuffer:          cfg.EventBuffer,
	}
}

// Orchestrator 驱动单个旅程的叙述流水线：
// SIZING → OUTLINING → GENERATING(i) → SYNTHESIZING(i) → … → COMPLETE，任意状态可进入 ABORTED。
// 片段文本严格串行生成；片段 i 的合成与片段 i+1 的文本生成并行，合成并发数受限。
type Orchestrator struct {
	sizer     Sizer
	outline   outlineGenerator
	segments  segmentGenerator
	synth     service.Synthesizer
	pool      taskSubmitter
	publisher service.SegmentEventPublisher
	policy    Policy
}

// NewOrchestrator 创建编排器，publisher 可为 nil
func NewOrchestrator(sizer Sizer, outline outlineGenerator, segments segmentGenerator, synth service.Synthesizer, pool taskSubmitter, publisher service.SegmentEventPublisher, policy Policy) *Orchestrator {
	if publisher == nil {
		publisher = service.NopPublisher{}
	}
	if policy.MaxInflightSynthesis <= 0 {
		policy.MaxInflightSynthesis = 1
	}
	if policy.EventBuffer < 0 {
		policy.EventBuffer = 0
	}
	return &Orchestrator{
		sizer:     sizer,
		outline:   outline,
		segments:  segments,
		synth:     synth,
		pool:      pool,
		publisher: publisher,
		policy:    policy,
	}
}

// Run 启动旅程叙述，立即返回故事与事件流。
// 事件按序号有序，终止事件（complete / aborted）之后通道关闭。ctx 取消即放弃整个旅程。
func (o *Orchestrator) Run(ctx context.Context, journey *entity.Journey) (*entity.Story, <-chan entity.SegmentEvent) {
	story := entity.NewStory(journey)
	events := make(chan entity.SegmentEvent, o.policy.EventBuffer)
	r := &run{
		o:       o,
		journey: journey,
		story:   story,
		events:  events,
		ctx:     service.WithJourney(logger.WithContext(ctx, logger.JourneyIDKey, journey.ID), journey.ID),
		relay:   make(chan entity.SegmentEvent, relayBuffer),
	}
	go r.relayEvents()
	go r.execute()
	return story, events
}

// run 单次旅程的执行状态
type run struct {
	o       *Orchestrator
	journey *entity.Journey
	story   *entity.Story
	events  chan<- entity.SegmentEvent
	// ctx 消费者上下文，用于投递事件
	ctx context.Context
	// work 流水线内部上下文，中止策略触发时提前取消
	work   context.Context
	cancel context.CancelFunc
	// synth 合成上下文，只随消费者取消；中止后已入队片段的合成照常完成
	synth context.Context

	relay chan entity.SegmentEvent

	mu          sync.Mutex
	abortReason string
}

// audioSlot 某个片段的合成结果，done 关闭后可读
type audioSlot struct {
	index int
	audio *entity.AudioBuffer
	err   error
	done  chan struct{}
}

func (r *run) execute() {
	defer close(r.events)
	// 外部发布在后台继续，不拖住事件流关闭
	defer close(r.relay)
	metrics.ActiveJourneys.Inc()
	defer metrics.ActiveJourneys.Dec()

	ctx, span := tracer.Start(r.ctx, "narration.journey")
	defer span.End()
	span.SetAttributes(
		attribute.String("journey.id", r.journey.ID),
		attribute.String("journey.style", string(r.journey.Style)),
	)
	r.synth = ctx
	r.work, r.cancel = context.WithCancel(ctx)
	defer r.cancel()

	r.story.SetState(entity.PipelineState{Phase: entity.PhaseSizing})
	count := r.o.sizer.SegmentCount(r.journey.TotalDurationSeconds)
	logger.Info(ctx, "journey narration started",
		"style", r.journey.Style,
		"duration_seconds", r.journey.TotalDurationSeconds,
		"segment_count", count,
	)

	r.story.SetState(entity.PipelineState{Phase: entity.PhaseOutlining})
	outline := r.o.outline.GenerateOutline(r.work, r.journey, count)
	if r.work.Err() != nil {
		r.finish(ctx, span)
		return
	}
	_ = r.story.SetOutline(outline)
	r.emit(entity.SegmentEvent{Type: entity.EventOutline, Outline: outline, SegmentCount: count})

	slots := make(chan *audioSlot, count)
	published := make(chan struct{})
	go r.publishAudio(slots, published)

	r.generate(count, outline, slots)

	close(slots)
	<-published
	r.finish(ctx, span)
}

// generate 串行生成全部片段文本并提交合成
func (r *run) generate(count int, outline []string, slots chan<- *audioSlot) {
	sem := semaphore.NewWeighted(int64(r.o.policy.MaxInflightSynthesis))
	prior := ""

	for i := 1; i <= count; i++ {
		if r.work.Err() != nil {
			return
		}
		r.story.SetState(entity.PipelineState{Phase: entity.PhaseGenerating, Index: i})

		req := SegmentRequest{
			Journey:       r.journey,
			Index:         i,
			TotalEstimate: count,
			ChapterGoal:   outline[i-1],
			PriorText:     prior,
		}
		seg, err := retryStage(r.work, r.o.policy.Retry, StageSegment, i, func(ctx context.Context) (entity.Segment, error) {
			return r.o.segments.GenerateSegment(ctx, req)
		})
		if err != nil {
			if r.work.Err() != nil {
				return
			}
			if !r.substituteSegment(i, err) {
				return
			}
			seg = entity.Segment{Index: i, Text: SegmentFallbackText, Fallback: true}
			metrics.SegmentsTotal.WithLabelValues(string(r.journey.Style), "fallback").Inc()
		} else {
			// 占位片段不进入续写上下文，保持上一段真实叙述的连贯
			prior = seg.Text
			metrics.SegmentsTotal.WithLabelValues(string(r.journey.Style), "generated").Inc()
		}

		if err := r.story.Append(seg); err != nil {
			r.abort(fmt.Sprintf("segment %d could not be recorded: %v", i, err))
			return
		}
		r.emit(entity.SegmentEvent{Type: entity.EventSegmentText, SegmentCount: count, Segment: &seg})

		r.story.SetState(entity.PipelineState{Phase: entity.PhaseSynthesizing, Index: i})
		slot := &audioSlot{index: i, done: make(chan struct{})}
		slots <- slot
		r.submitSynthesis(sem, slot, seg.Text)
	}
}

// substituteSegment 按策略决定片段失败后是否以占位文本继续
func (r *run) substituteSegment(index int, err error) bool {
	logger.Error(r.work, "segment generation failed after retries", err, "index", index)
	switch {
	case index == 1:
		r.abort(fmt.Sprintf("the opening segment could not be generated: %v", err))
		return false
	case r.o.policy.SegmentFailure == config.SegmentPolicyAbort:
		r.abort(fmt.Sprintf("segment %d could not be generated: %v", index, err))
		return false
	default:
		return true
	}
}

func (r *run) submitSynthesis(sem *semaphore.Weighted, slot *audioSlot, text string) {
	if err := sem.Acquire(r.synth, 1); err != nil {
		slot.err = err
		close(slot.done)
		return
	}
	task := func() {
		defer sem.Release(1)
		defer close(slot.done)
		slot.audio, slot.err = r.synthesize(slot.index, text)
	}
	if r.o.pool == nil {
		go task()
		return
	}
	if err := r.o.pool.Submit(task); err != nil {
		sem.Release(1)
		slot.err = err
		close(slot.done)
	}
}

func (r *run) synthesize(index int, text string) (*entity.AudioBuffer, error) {
	provider := r.o.synth.Name()
	audio, err := retryStage(r.synth, r.o.policy.Retry, StageAudio, index, func(ctx context.Context) (*entity.AudioBuffer, error) {
		start := time.Now()
		buf, err := r.o.synth.Synthesize(ctx, text, r.journey.VoiceID)
		status := "success"
		if err == nil && buf == nil {
			err = service.ErrMalformedAudio
		}
		if err != nil {
			status = "error"
		}
		metrics.SynthesisDuration.WithLabelValues(provider, status).Observe(time.Since(start).Seconds())
		return buf, err
	})
	if err != nil {
		return nil, newStageError(StageAudio, index, err)
	}
	metrics.SynthesizedAudioSeconds.WithLabelValues(provider).Add(audio.Duration.Seconds())
	return audio, nil
}

// publishAudio 按序号等待每个片段的合成结果并依次发布，保证音频事件有序。
// 中止后仍处理完已入队的片段，每个文本片段最终都有音频或失败原因。
func (r *run) publishAudio(slots <-chan *audioSlot, published chan<- struct{}) {
	defer close(published)
	for slot := range slots {
		<-slot.done

		if slot.err != nil {
			logger.Error(r.synth, "audio synthesis failed after retries", slot.err, "index", slot.index)
			_ = r.story.MarkAudioFailed(slot.index, slot.err.Error())
			seg, _ := r.story.Segment(slot.index)
			r.emit(entity.SegmentEvent{Type: entity.EventSegmentAudioFailed, Segment: &seg, Reason: slot.err.Error()})
			if r.o.policy.AudioFailure == config.AudioPolicyAbort {
				r.abort(fmt.Sprintf("audio for segment %d could not be synthesized: %v", slot.index, slot.err))
			}
			continue
		}

		if err := r.story.AttachAudio(slot.index, slot.audio); err != nil {
			logger.Warn(r.synth, "attach audio failed", "index", slot.index, "error", err.Error())
			continue
		}
		seg, _ := r.story.Segment(slot.index)
		r.emit(entity.SegmentEvent{Type: entity.EventSegmentAudio, Segment: &seg})
	}
}

// abort 记录首个中止原因并停止流水线
func (r *run) abort(reason string) {
	r.mu.Lock()
	if r.abortReason == "" {
		r.abortReason = reason
	}
	r.mu.Unlock()
	r.cancel()
}

func (r *run) finish(ctx context.Context, span trace.Span) {
	r.mu.Lock()
	reason := r.abortReason
	r.mu.Unlock()

	if reason == "" && r.work.Err() != nil {
		reason = "journey cancelled"
		if errors.Is(context.Cause(r.ctx), context.DeadlineExceeded) {
			reason = "journey deadline exceeded"
		}
	}

	playable := r.story.Len()
	style := string(r.journey.Style)
	if reason != "" {
		r.story.Finish(entity.PhaseAborted, reason)
		metrics.JourneysTotal.WithLabelValues(style, string(entity.PhaseAborted)).Inc()
		span.SetAttributes(attribute.String("journey.abort_reason", reason))
		logger.Warn(ctx, "journey narration aborted", "reason", reason, "playable", playable)
		r.emit(entity.SegmentEvent{Type: entity.EventAborted, Reason: reason, Playable: playable, Partial: playable > 0})
		return
	}

	r.story.Finish(entity.PhaseComplete, "")
	metrics.JourneysTotal.WithLabelValues(style, string(entity.PhaseComplete)).Inc()
	logger.Info(ctx, "journey narration complete", "segments", playable)
	r.emit(entity.SegmentEvent{Type: entity.EventComplete, Playable: playable})
}

// emit 投递事件；消费者放弃（ctx 取消）后不再阻塞。外部发布经 relay 异步进行
func (r *run) emit(ev entity.SegmentEvent) {
	ev.JourneyID = r.journey.ID
	ev.Timestamp = time.Now()

	select {
	case r.relay <- ev:
	default:
		metrics.EventsDroppedTotal.WithLabelValues(string(ev.Type)).Inc()
		logger.Warn(r.ctx, "segment event relay full, dropping external publish", "type", ev.Type)
	}
	select {
	case r.events <- ev:
	case <-r.ctx.Done():
	}
}

// relayEvents 按产生顺序把事件交给外部发布者，单次发布有超时
func (r *run) relayEvents() {
	base := context.WithoutCancel(r.ctx)
	for ev := range r.relay {
		ctx, cancel := context.WithTimeout(base, publishTimeout)
		if err := r.o.publisher.Publish(ctx, ev); err != nil {
			logger.Warn(base, "segment event publish failed", "type", ev.Type, "error", err.Error())
		}
		cancel()
	}
}
