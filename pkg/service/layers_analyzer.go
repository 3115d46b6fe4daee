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

// LayersAnalyzer breaks a career confusion into four progressive layers.
// Unlike the story critique, raw chunks are not relayed: the layer output is
// only meaningful as complete JSON, so the full response is buffered, parsed,
// and then delivered one layer at a time in canonical order.
type LayersAnalyzer struct {
	ai     *AIService
	logger *slog.Logger
}

func NewLayersAnalyzer(ai *AIService) *LayersAnalyzer {
	return &LayersAnalyzer{
		ai:     ai,
		logger: utils.GetLogger(),
	}
}

// Analyze runs one analysis call. onLayer is invoked once per layer, in
// order, after the full response has been parsed.
func (a *LayersAnalyzer) Analyze(ctx context.Context, inputText string, onLayer func(models.Layer)) (*models.LayersAnalysisResult, error) {
	full, err := a.ai.StreamChat(ctx, StreamChatParams{
		SystemPrompt: prompts.LayersSystemPrompt,
		UserMessage:  fmt.Sprintf("Please analyze the following career confusion:\n\n%s", inputText),
	})
	if err != nil {
		return nil, err
	}

	var result models.LayersAnalysisResult
	if err := ParseStructured(full, &result); err != nil {
		a.logger.Warn("Layer analysis unparsable", "error", err)
		if errors.Is(err, ErrNoStructureFound) {
			return nil, ErrAnalysisNotParsable
		}
		return nil, ErrAnalysisMalformed
	}

	if err := validateLayersResult(&result); err != nil {
		a.logger.Warn("Layer analysis schema violation", "error", err)
		return nil, ErrAnalysisMalformed
	}

	if onLayer != nil {
		for _, layer := range result.Layers {
			onLayer(layer)
		}
	}

	return &result, nil
}

func validateLayersResult(r *models.LayersAnalysisResult) error {
	if len(r.Layers) != 4 {
		return fmt.Errorf("%w: expected 4 layers, got %d", ErrSchemaViolation, len(r.Layers))
	}
	for i, layer := range r.Layers {
		if layer.LayerIndex != i {
			return fmt.Errorf("%w: layer %d has index %d", ErrSchemaViolation, i, layer.LayerIndex)
		}
	}
	return nil
}
