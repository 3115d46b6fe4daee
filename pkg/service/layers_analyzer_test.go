package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mingjing/mingjing/pkg/models"
)

const layersResponseJSON = `{
  "layers": [
    {"layerIndex": 0, "title": "事件层", "content": "领导把项目交给了同事。", "keyInsights": ["客观事实"], "editableFields": ["项目"]},
    {"layerIndex": 1, "title": "情绪层", "content": "你感到失落和焦虑。", "keyInsights": ["失落", "焦虑"], "editableFields": ["失落"]},
    {"layerIndex": 2, "title": "需求层", "content": "你需要被认可。", "keyInsights": ["认可"], "editableFields": ["认可"]},
    {"layerIndex": 3, "title": "信念层", "content": "你相信努力必须立刻被看见。", "keyInsights": ["即时回报信念"], "editableFields": ["努力必须立刻被看见"]}
  ],
  "suggestions": [
    {"action": "与领导进行一次一对一沟通", "rationale": "澄清分工预期", "priority": "high"},
    {"action": "记录自己的关键产出", "rationale": "为下次评审准备证据", "priority": "medium"}
  ]
}`

func TestLayersAnalyze_EmitsLayersInOrder(t *testing.T) {
	model := &fakeChatModel{chunks: splitChunks("分析完成：\n"+layersResponseJSON, 5)}
	analyzer := NewLayersAnalyzer(NewAIService(model, time.Minute))

	var seen []models.Layer
	result, err := analyzer.Analyze(context.Background(), "我很迷茫……", func(layer models.Layer) {
		seen = append(seen, layer)
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(seen) != 4 {
		t.Fatalf("onLayer calls = %d, want 4", len(seen))
	}
	for i, layer := range seen {
		if layer.LayerIndex != i {
			t.Fatalf("layer %d has index %d", i, layer.LayerIndex)
		}
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("len(suggestions) = %d, want 2", len(result.Suggestions))
	}
	if result.Suggestions[0].Priority != "high" {
		t.Fatalf("first suggestion priority = %q, want high", result.Suggestions[0].Priority)
	}
}

func TestLayersAnalyze_WrongLayerCount(t *testing.T) {
	model := &fakeChatModel{chunks: []string{`{"layers": [{"layerIndex": 0, "title": "事件层", "content": "x", "keyInsights": [], "editableFields": []}], "suggestions": []}`}}
	analyzer := NewLayersAnalyzer(NewAIService(model, time.Minute))

	called := false
	_, err := analyzer.Analyze(context.Background(), "text", func(models.Layer) { called = true })
	if !errors.Is(err, ErrAnalysisMalformed) {
		t.Fatalf("Analyze() error = %v, want ErrAnalysisMalformed", err)
	}
	if called {
		t.Fatalf("onLayer must not fire for an invalid result")
	}
}

func TestLayersAnalyze_NoJSON(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"无法进行分析"}}
	analyzer := NewLayersAnalyzer(NewAIService(model, time.Minute))

	_, err := analyzer.Analyze(context.Background(), "text", nil)
	if !errors.Is(err, ErrAnalysisNotParsable) {
		t.Fatalf("Analyze() error = %v, want ErrAnalysisNotParsable", err)
	}
}
