package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/mingjing/mingjing/pkg/utils"
)

var (
	ErrStreamCancelled = errors.New("请求已取消")
	ErrStreamTimeout   = errors.New("AI 响应超时，请重试")
	ErrProvider        = errors.New("AI 服务调用失败")
)

// AIService wraps a single chat completion call against the configured model.
// It owns the timeout and cancellation handling; pipelines compose it with
// feature prompts and result parsing.
type AIService struct {
	model   einoModel.BaseChatModel
	timeout time.Duration
	logger  *slog.Logger
}

func NewAIService(model einoModel.BaseChatModel, timeout time.Duration) *AIService {
	return &AIService{
		model:   model,
		timeout: timeout,
		logger:  utils.GetLogger(),
	}
}

// StreamChatParams describes one streaming completion request.
type StreamChatParams struct {
	SystemPrompt string
	// History holds prior turns in conversation order, before UserMessage.
	History []*schema.Message
	UserMessage string
	// OnChunk receives each incremental text fragment in arrival order.
	// Never called again once ctx is cancelled. May be nil.
	OnChunk func(chunk string)
}

// StreamChat issues one streaming completion request and returns the fully
// accumulated response text. The call is bounded by the configured timeout.
// Exactly one outbound request per invocation; errors are never retried here
// since a completion call is not idempotent.
func (s *AIService) StreamChat(ctx context.Context, params StreamChatParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrStreamCancelled
	}

	msgs := make([]*schema.Message, 0, len(params.History)+2)
	msgs = append(msgs, schema.SystemMessage(params.SystemPrompt))
	msgs = append(msgs, params.History...)
	msgs = append(msgs, schema.UserMessage(params.UserMessage))

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reader, err := s.model.Stream(callCtx, msgs)
	if err != nil {
		return "", s.mapStreamError(ctx, callCtx, err)
	}
	defer reader.Close()

	var full strings.Builder
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", s.mapStreamError(ctx, callCtx, err)
		}
		if chunk.Content == "" {
			continue
		}
		// Stop delivering chunks the moment the caller is gone.
		if ctx.Err() != nil {
			return "", ErrStreamCancelled
		}
		full.WriteString(chunk.Content)
		if params.OnChunk != nil {
			params.OnChunk(chunk.Content)
		}
	}

	return full.String(), nil
}

// mapStreamError classifies a failed call. Caller cancellation takes
// precedence over the timeout and provider failures.
func (s *AIService) mapStreamError(ctx, callCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrStreamCancelled
	}
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		s.logger.Warn("AI call exceeded timeout", "timeout", s.timeout)
		return ErrStreamTimeout
	}
	s.logger.Error("AI provider call failed", "error", err)
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
