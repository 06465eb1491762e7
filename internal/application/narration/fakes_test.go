package narration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"journey-narrator/internal/config"
	"journey-narrator/internal/domain/entity"
	"journey-narrator/internal/workflow/chain"
	wfmodel "journey-narrator/internal/workflow/model"
	workflowport "journey-narrator/internal/workflow/port"
)

var errNetwork = errors.New("dial tcp: connection refused")

// scriptedChatModel 根据提示词区分大纲与片段请求
type scriptedChatModel struct {
	mu       sync.Mutex
	outline  func(prompt string) (string, error)
	segment  func(call int, prompt string) (string, error)
	prompts  []string
	segCalls int
}

func (m *scriptedChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if len(input) != 1 || input[0].Role != schema.User {
		return nil, fmt.Errorf("expected a single user message, got %d", len(input))
	}
	prompt := input[0].Content

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	isOutline := strings.Contains(prompt, "JSON array")
	call := 0
	if !isOutline {
		m.segCalls++
		call = m.segCalls
	}
	m.mu.Unlock()

	var (
		text string
		err  error
	)
	switch {
	case isOutline && m.outline != nil:
		text, err = m.outline(prompt)
	case isOutline:
		text = `["Chapter one.", "Chapter two.", "Chapter three.", "Chapter four."]`
	case m.segment != nil:
		text, err = m.segment(call, prompt)
	default:
		text = fmt.Sprintf("Narration for call %d.", call)
	}
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(text, nil), nil
}

func (m *scriptedChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedChatModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func testOptions() wfmodel.GenerationOptions {
	return wfmodel.GenerationOptions{Provider: "fake", Timeout: time.Second}
}

func newOutlineGenerator(m model.BaseChatModel) *OutlineGenerator {
	return NewOutlineGenerator(chain.NewOutlineChain(workflowport.StaticChatModelFactory{Model: m}, nil), testOptions())
}

func newSegmentGenerator(m model.BaseChatModel) *SegmentGenerator {
	return NewSegmentGenerator(chain.NewSegmentChain(workflowport.StaticChatModelFactory{Model: m}, nil), testOptions(), NewSizer(60, 150), DefaultContextChars)
}

// fakeSynthesizer 记录并发数，可按序号注入延迟或失败
type fakeSynthesizer struct {
	delay    func(text string) time.Duration
	fail     func(text string, attempt int) error
	inflight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	attempts map[string]int
}

func (s *fakeSynthesizer) Name() string { return "fake" }

func (s *fakeSynthesizer) Synthesize(ctx context.Context, text, voiceID string) (*entity.AudioBuffer, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	s.mu.Lock()
	if s.attempts == nil {
		s.attempts = make(map[string]int)
	}
	s.attempts[text]++
	attempt := s.attempts[text]
	s.mu.Unlock()

	if s.delay != nil {
		select {
		case <-time.After(s.delay(text)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail != nil {
		if err := s.fail(text, attempt); err != nil {
			return nil, err
		}
	}
	return &entity.AudioBuffer{
		ContentType: "audio/wav",
		Data:        []byte(text),
		SampleRate:  16000,
		Channels:    1,
		Duration:    time.Second,
	}, nil
}

// stubSegments 直接返回或失败的片段生成器
type stubSegments struct {
	mu      sync.Mutex
	fail    func(index, attempt int) error
	block   bool
	calls   map[int]int
	priors  map[int]string
	order   []int
	started chan int
}

func (s *stubSegments) GenerateSegment(ctx context.Context, req SegmentRequest) (entity.Segment, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[int]int)
	}
	if s.priors == nil {
		s.priors = make(map[int]string)
	}
	s.calls[req.Index]++
	s.priors[req.Index] = req.PriorText
	attempt := s.calls[req.Index]
	s.order = append(s.order, req.Index)
	s.mu.Unlock()

	if s.started != nil {
		select {
		case s.started <- req.Index:
		default:
		}
	}
	if s.block {
		<-ctx.Done()
		return entity.Segment{}, newStageError(StageSegment, req.Index, ctx.Err())
	}
	if s.fail != nil {
		if err := s.fail(req.Index, attempt); err != nil {
			return entity.Segment{}, newStageError(StageSegment, req.Index, err)
		}
	}
	return entity.Segment{Index: req.Index, Text: fmt.Sprintf("segment %d text", req.Index)}, nil
}

type fixedOutline struct{ calls atomic.Int32 }

func (f *fixedOutline) GenerateOutline(_ context.Context, _ *entity.Journey, n int) []string {
	f.calls.Add(1)
	return FallbackOutline(n)
}

func testPolicy() Policy {
	return Policy{
		Retry: RetryPolicy{
			MaxRetries: 2,
			Backoff:    config.BackoffConfig{Initial: time.Millisecond, Max: 2 * time.Millisecond, Multiplier: 1.5},
		},
		SegmentFailure:       config.SegmentPolicySubstitute,
		AudioFailure:         config.AudioPolicyContinue,
		MaxInflightSynthesis: 2,
		EventBuffer:          4,
	}
}

func mustJourney(duration float64, style entity.StoryStyle) *entity.Journey {
	j, err := entity.NewJourney("Old Town", "Harbor", entity.TravelModeWalking, duration, 900, style, "alloy")
	if err != nil {
		panic(err)
	}
	return j
}

func collect(events <-chan entity.SegmentEvent) []entity.SegmentEvent {
	var out []entity.SegmentEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

// blockingChatModel 一直等待直到 ctx 结束
type blockingChatModel struct{}

func (blockingChatModel) Generate(ctx context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingChatModel) Stream(ctx context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func chainFor(m model.BaseChatModel) *chain.SegmentChain {
	return chain.NewSegmentChain(workflowport.StaticChatModelFactory{Model: m}, nil)
}

func testOptionsWithTimeout(d time.Duration) wfmodel.GenerationOptions {
	opts := testOptions()
	opts.Timeout = d
	return opts
}
