package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeChatModel streams canned chunks, optionally pausing between them. It
// honors context cancellation the way a real provider stream does.
type fakeChatModel struct {
	chunks      []string
	err         error
	delay       time.Duration
	streamCalls atomic.Int32
	lastInput   []*schema.Message
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	return schema.AssistantMessage(strings.Join(m.chunks, ""), nil), m.err
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	m.streamCalls.Add(1)
	m.lastInput = input

	sr, sw := schema.Pipe[*schema.Message](len(m.chunks) + 1)
	go func() {
		defer sw.Close()
		for _, c := range m.chunks {
			if m.delay > 0 {
				select {
				case <-ctx.Done():
					sw.Send(nil, ctx.Err())
					return
				case <-time.After(m.delay):
				}
			}
			if sw.Send(schema.AssistantMessage(c, nil), nil) {
				return
			}
		}
		if m.err != nil {
			sw.Send(nil, m.err)
		}
	}()
	return sr, nil
}

func TestStreamChat_ChunksConcatenateToFullText(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"你好", "，", "世界", "！"}}
	ai := NewAIService(model, time.Minute)

	var received []string
	full, err := ai.StreamChat(context.Background(), StreamChatParams{
		SystemPrompt: "test",
		UserMessage:  "hi",
		OnChunk:      func(chunk string) { received = append(received, chunk) },
	})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}
	if full != "你好，世界！" {
		t.Fatalf("full = %q, want %q", full, "你好，世界！")
	}
	if strings.Join(received, "") != full {
		t.Fatalf("concatenated chunks %q != full text %q", strings.Join(received, ""), full)
	}
}

func TestStreamChat_MessageOrder(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"ok"}}
	ai := NewAIService(model, time.Minute)

	history := []*schema.Message{
		schema.UserMessage("earlier question"),
		schema.AssistantMessage("earlier answer", nil),
	}
	if _, err := ai.StreamChat(context.Background(), StreamChatParams{
		SystemPrompt: "system text",
		History:      history,
		UserMessage:  "latest",
	}); err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	got := model.lastInput
	if len(got) != 4 {
		t.Fatalf("len(input) = %d, want 4", len(got))
	}
	if got[0].Role != schema.System || got[0].Content != "system text" {
		t.Fatalf("input[0] = %+v, want system message", got[0])
	}
	if got[3].Role != schema.User || got[3].Content != "latest" {
		t.Fatalf("input[3] = %+v, want latest user message", got[3])
	}
}

func TestStreamChat_AlreadyCancelled_NoRequestIssued(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"a"}}
	ai := NewAIService(model, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ai.StreamChat(ctx, StreamChatParams{SystemPrompt: "t", UserMessage: "m"})
	if !errors.Is(err, ErrStreamCancelled) {
		t.Fatalf("StreamChat() error = %v, want ErrStreamCancelled", err)
	}
	if n := model.streamCalls.Load(); n != 0 {
		t.Fatalf("stream calls = %d, want 0", n)
	}
}

func TestStreamChat_NoChunksAfterCancel(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"a", "b", "c", "d"}, delay: 5 * time.Millisecond}
	ai := NewAIService(model, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	_, err := ai.StreamChat(ctx, StreamChatParams{
		SystemPrompt: "t",
		UserMessage:  "m",
		OnChunk: func(chunk string) {
			calls.Add(1)
			cancel()
		},
	})
	if !errors.Is(err, ErrStreamCancelled) {
		t.Fatalf("StreamChat() error = %v, want ErrStreamCancelled", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("onChunk calls after cancel = %d, want exactly 1", n)
	}
}

func TestStreamChat_Timeout(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"slow"}, delay: 200 * time.Millisecond}
	ai := NewAIService(model, 10*time.Millisecond)

	_, err := ai.StreamChat(context.Background(), StreamChatParams{SystemPrompt: "t", UserMessage: "m"})
	if !errors.Is(err, ErrStreamTimeout) {
		t.Fatalf("StreamChat() error = %v, want ErrStreamTimeout", err)
	}
}

func TestStreamChat_ProviderError(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"partial"}, err: errors.New("upstream 500")}
	ai := NewAIService(model, time.Minute)

	_, err := ai.StreamChat(context.Background(), StreamChatParams{SystemPrompt: "t", UserMessage: "m"})
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("StreamChat() error = %v, want ErrProvider", err)
	}
}
