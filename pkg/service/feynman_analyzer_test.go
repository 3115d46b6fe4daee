package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const feynmanResponseJSON = `{
  "scores": {"udi": 80, "ddi": 65, "cci": 75, "total": 74},
  "analysis": {
    "udi": {"score": 80, "feedback": "STAR 要素齐全", "issues": []},
    "ddi": {"score": 65, "feedback": "数据支撑不足", "issues": ["缺少量化结果"]},
    "cci": {"score": 75, "feedback": "因果基本清晰", "issues": ["行动与结果的关联可以更直接"]}
  },
  "improvements": [
    {"issue": "结果缺少数据", "suggestion": "补充具体指标", "example": "将接口耗时从 800ms 降到 200ms"}
  ],
  "summary": "故事结构完整，建议补充量化数据。"
}`

func TestFeynmanAnalyze_ParsesResultAndRelaysChunks(t *testing.T) {
	response := "好的，分析如下：\n" + feynmanResponseJSON
	model := &fakeChatModel{chunks: splitChunks(response, 7)}
	analyzer := NewFeynmanAnalyzer(NewAIService(model, time.Minute))

	var streamed strings.Builder
	result, err := analyzer.Analyze(context.Background(), "在大促期间……", func(chunk string) {
		streamed.WriteString(chunk)
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Scores.UDI != 80 || result.Scores.Total != 74 {
		t.Fatalf("unexpected scores: %+v", result.Scores)
	}
	if len(result.Improvements) != 1 {
		t.Fatalf("len(improvements) = %d, want 1", len(result.Improvements))
	}
	if streamed.String() != response {
		t.Fatalf("streamed text does not match model output")
	}
}

func TestFeynmanAnalyze_NoJSONInResponse(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"抱歉，我无法分析这个故事。"}}
	analyzer := NewFeynmanAnalyzer(NewAIService(model, time.Minute))

	_, err := analyzer.Analyze(context.Background(), "story", nil)
	if !errors.Is(err, ErrAnalysisNotParsable) {
		t.Fatalf("Analyze() error = %v, want ErrAnalysisNotParsable", err)
	}
}

func TestFeynmanAnalyze_ScoreOutOfRange(t *testing.T) {
	model := &fakeChatModel{chunks: []string{`{"scores": {"udi": 150, "ddi": 60, "cci": 70, "total": 90}, "analysis": {"udi": {"score": 150, "feedback": "", "issues": []}, "ddi": {"score": 60, "feedback": "", "issues": []}, "cci": {"score": 70, "feedback": "", "issues": []}}, "improvements": [], "summary": ""}`}}
	analyzer := NewFeynmanAnalyzer(NewAIService(model, time.Minute))

	_, err := analyzer.Analyze(context.Background(), "story", nil)
	if !errors.Is(err, ErrAnalysisMalformed) {
		t.Fatalf("Analyze() error = %v, want ErrAnalysisMalformed", err)
	}
}

// splitChunks cuts s into n roughly equal pieces on byte boundaries that do
// not split UTF-8 sequences.
func splitChunks(s string, n int) []string {
	runes := []rune(s)
	if n < 1 {
		n = 1
	}
	size := (len(runes) + n - 1) / n
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
