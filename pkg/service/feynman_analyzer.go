package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/prompts"
	"github.com/mingjing/mingjing/pkg/utils"
)

// User-visible analysis failures. "Not found" and "invalid" are surfaced
// with distinct retry messages.
var (
	ErrAnalysisNotParsable = errors.New("AI 分析结果解析失败，请重试")
	ErrAnalysisMalformed   = errors.New("AI 返回了格式错误的数据，请重试")
)

// FeynmanAnalyzer critiques a STAR story along three scoring dimensions,
// relaying raw text chunks while the model is generating.
type FeynmanAnalyzer struct {
	ai     *AIService
	logger *slog.Logger
}

func NewFeynmanAnalyzer(ai *AIService) *FeynmanAnalyzer {
	return &FeynmanAnalyzer{
		ai:     ai,
		logger: utils.GetLogger(),
	}
}

// Analyze runs one critique call and parses the structured result from the
// accumulated response.
func (a *FeynmanAnalyzer) Analyze(ctx context.Context, starStory string, onChunk func(string)) (*models.FeynmanAnalysisResult, error) {
	full, err := a.ai.StreamChat(ctx, StreamChatParams{
		SystemPrompt: prompts.FeynmanSystemPrompt,
		UserMessage:  fmt.Sprintf("Please analyze the following STAR story:\n\n%s", starStory),
		OnChunk:      onChunk,
	})
	if err != nil {
		return nil, err
	}

	var result models.FeynmanAnalysisResult
	if err := ParseStructured(full, &result); err != nil {
		a.logger.Warn("Feynman analysis unparsable", "error", err)
		if errors.Is(err, ErrNoStructureFound) {
			return nil, ErrAnalysisNotParsable
		}
		return nil, ErrAnalysisMalformed
	}

	if err := validateFeynmanResult(&result); err != nil {
		a.logger.Warn("Feynman analysis schema violation", "error", err)
		return nil, ErrAnalysisMalformed
	}

	return &result, nil
}

func validateFeynmanResult(r *models.FeynmanAnalysisResult) error {
	scores := []float64{r.Scores.UDI, r.Scores.DDI, r.Scores.CCI, r.Scores.Total}
	for _, s := range scores {
		if !validScore(s) {
			return fmt.Errorf("%w: score %v out of range", ErrSchemaViolation, s)
		}
	}
	return nil
}
