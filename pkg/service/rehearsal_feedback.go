package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/prompts"
	"github.com/mingjing/mingjing/pkg/utils"
)

var (
	ErrFeedbackNotParsable = errors.New("反馈生成失败，请重试")
	ErrFeedbackMalformed   = errors.New("反馈数据格式错误，请重试")
)

// FeedbackGenerator scores a finished interview transcript. The completion
// call streams like any other but chunks are discarded; only the parsed
// report matters.
type FeedbackGenerator struct {
	ai     *AIService
	logger *slog.Logger
}

func NewFeedbackGenerator(ai *AIService) *FeedbackGenerator {
	return &FeedbackGenerator{
		ai:     ai,
		logger: utils.GetLogger(),
	}
}

// Generate produces the structured feedback report for a transcript.
func (g *FeedbackGenerator) Generate(ctx context.Context, turns []db.ChatTurn, style string) (*models.RehearsalFeedback, error) {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "候选人"
		if t.Role == "assistant" {
			speaker = "面试官"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, t.Content))
	}
	transcript := strings.Join(lines, "\n\n")

	full, err := g.ai.StreamChat(ctx, StreamChatParams{
		SystemPrompt: prompts.RehearsalFeedbackPrompt,
		UserMessage:  fmt.Sprintf("Interview style: %s\n\nFull interview transcript:\n\n%s", style, transcript),
	})
	if err != nil {
		return nil, err
	}

	var feedback models.RehearsalFeedback
	if err := ParseStructured(full, &feedback); err != nil {
		g.logger.Warn("Feedback unparsable", "error", err)
		if errors.Is(err, ErrNoStructureFound) {
			return nil, ErrFeedbackNotParsable
		}
		return nil, ErrFeedbackMalformed
	}

	if err := validateFeedback(&feedback); err != nil {
		g.logger.Warn("Feedback schema violation", "error", err)
		return nil, ErrFeedbackMalformed
	}

	return &feedback, nil
}

// validateFeedback checks score ranges and keeps the declared total honest:
// the model sometimes drifts from the weighted formula, so totals more than
// one point off are recomputed rather than rejected.
func validateFeedback(f *models.RehearsalFeedback) error {
	s := &f.Scores
	for _, score := range []float64{s.ExpressionClarity, s.ContentDepth, s.Adaptability, s.OverallImpression} {
		if !validScore(score) {
			return fmt.Errorf("%w: score %v out of range", ErrSchemaViolation, score)
		}
	}
	expected := s.ExpressionClarity*0.25 + s.ContentDepth*0.30 + s.Adaptability*0.25 + s.OverallImpression*0.20
	if math.Abs(s.Total-expected) > 1.0 {
		s.Total = math.Round(expected*10) / 10
	}
	return nil
}
