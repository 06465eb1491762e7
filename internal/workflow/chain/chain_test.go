package chain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	wfmodel "journey-narrator/internal/workflow/model"
	"journey-narrator/internal/workflow/node"
	workflowport "journey-narrator/internal/workflow/port"
)

type fakeChatModel struct {
	mu       sync.Mutex
	reply    *schema.Message
	err      error
	block    bool
	requests [][]*schema.Message
	options  []*model.Options
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	f.requests = append(f.requests, input)
	f.options = append(f.options, model.GetCommonOptions(nil, opts...))
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func ptr[T any](v T) *T { return &v }

func segmentInput() *wfmodel.SegmentGenerateInput {
	return &wfmodel.SegmentGenerateInput{
		JourneyDescription: "a 3-minute walking journey from Old Town to Harbor",
		StyleInstruction:   "Write like a fairy tale.",
		Index:              2,
		TotalEstimate:      4,
		ChapterGoal:        "The traveler meets a talking gull.",
		ContextBlock:       "The story so far ends with: the lamps flickered.",
		TargetWords:        150,
		GenerationOptions: wfmodel.GenerationOptions{
			Provider:    "openai",
			Model:       "gpt-test",
			Temperature: ptr(float32(0.8)),
			MaxTokens:   ptr(400),
			Timeout:     time.Second,
		},
	}
}

func TestSegmentChainSendsOneUserMessageWithOptions(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("## Chapter 2\nThe gull spoke softly.", nil)}
	c := NewSegmentChain(workflowport.StaticChatModelFactory{Model: fake}, nil)

	out, err := c.Invoke(context.Background(), segmentInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Content != "The gull spoke softly." {
		t.Fatalf("unexpected content %q", out.Content)
	}

	if len(fake.requests) != 1 || len(fake.requests[0]) != 1 {
		t.Fatalf("expected one request with one message, got %+v", fake.requests)
	}
	msg := fake.requests[0][0]
	if msg.Role != schema.User {
		t.Fatalf("expected user role, got %s", msg.Role)
	}
	for _, want := range []string{"chapter 2 of about 4", "talking gull", "the lamps flickered", "about 150 words"} {
		if !strings.Contains(msg.Content, want) {
			t.Fatalf("prompt missing %q:\n%s", want, msg.Content)
		}
	}

	opts := fake.options[0]
	if opts.Temperature == nil || *opts.Temperature != 0.8 {
		t.Fatalf("temperature not forwarded: %+v", opts.Temperature)
	}
	if opts.MaxTokens == nil || *opts.MaxTokens != 400 {
		t.Fatalf("max tokens not forwarded: %+v", opts.MaxTokens)
	}
	if opts.Model == nil || *opts.Model != "gpt-test" {
		t.Fatalf("model not forwarded: %+v", opts.Model)
	}
}

func TestSegmentChainEmptyReply(t *testing.T) {
	for _, reply := range []*schema.Message{nil, schema.AssistantMessage("   ", nil), schema.AssistantMessage("# Title only", nil)} {
		fake := &fakeChatModel{reply: reply}
		c := NewSegmentChain(workflowport.StaticChatModelFactory{Model: fake}, nil)
		if _, err := c.Invoke(context.Background(), segmentInput()); !errors.Is(err, node.ErrEmptyResponse) {
			t.Fatalf("expected ErrEmptyResponse for %+v, got %v", reply, err)
		}
	}
}

func TestSegmentChainUnexpectedRole(t *testing.T) {
	fake := &fakeChatModel{reply: schema.UserMessage("echo")}
	c := NewSegmentChain(workflowport.StaticChatModelFactory{Model: fake}, nil)
	if _, err := c.Invoke(context.Background(), segmentInput()); !errors.Is(err, node.ErrUnexpectedRole) {
		t.Fatalf("expected ErrUnexpectedRole, got %v", err)
	}
}

func TestGenerateTimeoutIsTyped(t *testing.T) {
	fake := &fakeChatModel{block: true}
	c := NewSegmentChain(workflowport.StaticChatModelFactory{Model: fake}, nil)
	in := segmentInput()
	in.Timeout = 20 * time.Millisecond

	_, err := c.Invoke(context.Background(), in)
	if !errors.Is(err, node.ErrLLMTimeout) {
		t.Fatalf("expected ErrLLMTimeout, got %v", err)
	}
}

func TestGenerateCallerCancelIsNotTimeout(t *testing.T) {
	fake := &fakeChatModel{block: true}
	c := NewSegmentChain(workflowport.StaticChatModelFactory{Model: fake}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.Invoke(ctx, segmentInput())
	if errors.Is(err, node.ErrLLMTimeout) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOutlineChainReturnsRawReply(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage(`["a","b","c","d"]`, nil)}
	c := NewOutlineChain(workflowport.StaticChatModelFactory{Model: fake}, nil)

	out, err := c.Invoke(context.Background(), &wfmodel.OutlineGenerateInput{
		JourneyDescription: "a 3-minute walking journey from Old Town to Harbor",
		StartLabel:         "Old Town",
		EndLabel:           "Harbor",
		TravelMode:         "walking",
		DurationMinutes:    3,
		StyleInstruction:   "Write like a fairy tale.",
		ChapterCount:       4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Raw != `["a","b","c","d"]` {
		t.Fatalf("unexpected raw %q", out.Raw)
	}
	content := fake.requests[0][0].Content
	if !strings.Contains(content, "exactly 4 chapters") || !strings.Contains(content, "Old Town") {
		t.Fatalf("outline prompt incomplete:\n%s", content)
	}
}

func TestOutlineChainRequiresChapterCount(t *testing.T) {
	c := NewOutlineChain(workflowport.StaticChatModelFactory{Model: &fakeChatModel{}}, nil)
	if _, err := c.Invoke(context.Background(), &wfmodel.OutlineGenerateInput{}); err == nil {
		t.Fatal("expected error for zero chapter count")
	}
}
