package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/prompts"
	"github.com/mingjing/mingjing/pkg/utils"
)

// RehearsalInterviewer drives the mock interview conversation. Each style
// maps to a fixed system prompt; the scenario is injected as a synthetic
// priming exchange ahead of the real turn history.
type RehearsalInterviewer struct {
	ai     *AIService
	logger *slog.Logger
}

func NewRehearsalInterviewer(ai *AIService) *RehearsalInterviewer {
	return &RehearsalInterviewer{
		ai:     ai,
		logger: utils.GetLogger(),
	}
}

// FirstQuestion asks the model to open the interview for the given scenario.
func (r *RehearsalInterviewer) FirstQuestion(ctx context.Context, style, scenario string) (string, error) {
	systemPrompt, ok := prompts.InterviewerPrompt(style)
	if !ok {
		return "", fmt.Errorf("unknown interviewer style: %s", style)
	}

	return r.ai.StreamChat(ctx, StreamChatParams{
		SystemPrompt: systemPrompt,
		UserMessage:  fmt.Sprintf("面试场景：%s\n\n请开始面试，提出你的第一个问题。", scenario),
	})
}

// Respond generates the interviewer's reply to the latest candidate message.
// turns must already include that message as its final element. Returns the
// reply with the end marker stripped, plus whether the marker was present.
func (r *RehearsalInterviewer) Respond(ctx context.Context, style, scenario string, turns []db.ChatTurn, onChunk func(string)) (string, bool, error) {
	systemPrompt, ok := prompts.InterviewerPrompt(style)
	if !ok {
		return "", false, fmt.Errorf("unknown interviewer style: %s", style)
	}
	if len(turns) == 0 {
		return "", false, fmt.Errorf("no turns to respond to")
	}

	history := make([]*schema.Message, 0, len(turns)+1)
	history = append(history,
		schema.UserMessage(fmt.Sprintf("面试场景：%s", scenario)),
		schema.AssistantMessage("好的，我已了解面试场景。请开始。", nil),
	)
	for _, t := range turns[:len(turns)-1] {
		switch t.Role {
		case "assistant":
			history = append(history, schema.AssistantMessage(t.Content, nil))
		default:
			history = append(history, schema.UserMessage(t.Content))
		}
	}

	full, err := r.ai.StreamChat(ctx, StreamChatParams{
		SystemPrompt: systemPrompt,
		History:      history,
		UserMessage:  turns[len(turns)-1].Content,
		OnChunk:      onChunk,
	})
	if err != nil {
		return "", false, err
	}

	if strings.Contains(full, prompts.InterviewEndMarker) {
		content := strings.TrimSpace(strings.Replace(full, prompts.InterviewEndMarker, "", 1))
		return content, true, nil
	}
	return full, false, nil
}
