package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mingjing/mingjing/pkg/db"
)

const feedbackResponseJSON = `{
  "scores": {"expressionClarity": 80, "contentDepth": 70, "adaptability": 75, "overallImpression": 78, "total": 75.4},
  "dimensions": [
    {"name": "Expression Clarity", "score": 80, "feedback": "表达清楚", "suggestion": "多用结构化框架"},
    {"name": "Content Depth", "score": 70, "feedback": "深度一般", "suggestion": "补充数据"},
    {"name": "Adaptability", "score": 75, "feedback": "应变尚可", "suggestion": "追问时放慢节奏"},
    {"name": "Overall Impression", "score": 78, "feedback": "整体不错", "suggestion": "保持自信"}
  ],
  "highlights": ["回答结构清晰"],
  "improvements": ["量化项目结果"],
  "summary": "整体表现良好，有进步空间。"
}`

func sampleTranscript() []db.ChatTurn {
	return []db.ChatTurn{
		{Role: "assistant", Content: "请自我介绍。"},
		{Role: "user", Content: "我是李明。"},
		{Role: "assistant", Content: "说说你最有挑战的项目。"},
		{Role: "user", Content: "去年我主导了搜索重构。"},
	}
}

func TestGenerateFeedback_ParsesReport(t *testing.T) {
	model := &fakeChatModel{chunks: splitChunks("评估如下：\n"+feedbackResponseJSON, 4)}
	gen := NewFeedbackGenerator(NewAIService(model, time.Minute))

	feedback, err := gen.Generate(context.Background(), sampleTranscript(), "technical")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if feedback.Scores.ExpressionClarity != 80 {
		t.Fatalf("expressionClarity = %v, want 80", feedback.Scores.ExpressionClarity)
	}
	if len(feedback.Dimensions) != 4 {
		t.Fatalf("len(dimensions) = %d, want 4", len(feedback.Dimensions))
	}

	// total 75.4 matches the weighted formula, so it must be kept as-is.
	if feedback.Scores.Total != 75.4 {
		t.Fatalf("total = %v, want 75.4", feedback.Scores.Total)
	}
}

func TestGenerateFeedback_TranscriptLabels(t *testing.T) {
	model := &fakeChatModel{chunks: []string{feedbackResponseJSON}}
	gen := NewFeedbackGenerator(NewAIService(model, time.Minute))

	if _, err := gen.Generate(context.Background(), sampleTranscript(), "behavioral"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	prompt := model.lastInput[len(model.lastInput)-1].Content
	if !strings.Contains(prompt, "面试官: 请自我介绍。") {
		t.Fatalf("transcript missing interviewer label:\n%s", prompt)
	}
	if !strings.Contains(prompt, "候选人: 我是李明。") {
		t.Fatalf("transcript missing candidate label:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Interview style: behavioral") {
		t.Fatalf("prompt missing style:\n%s", prompt)
	}
}

func TestGenerateFeedback_RecomputesDriftedTotal(t *testing.T) {
	drifted := strings.Replace(feedbackResponseJSON, `"total": 75.4`, `"total": 50`, 1)
	model := &fakeChatModel{chunks: []string{drifted}}
	gen := NewFeedbackGenerator(NewAIService(model, time.Minute))

	feedback, err := gen.Generate(context.Background(), sampleTranscript(), "stress")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	expected := 80*0.25 + 70*0.30 + 75*0.25 + 78*0.20
	if math.Abs(feedback.Scores.Total-expected) > 1.0 {
		t.Fatalf("total = %v, want ~%v", feedback.Scores.Total, expected)
	}
}

func TestGenerateFeedback_ScoreOutOfRange(t *testing.T) {
	bad := strings.Replace(feedbackResponseJSON, `"adaptability": 75`, `"adaptability": -3`, 1)
	model := &fakeChatModel{chunks: []string{bad}}
	gen := NewFeedbackGenerator(NewAIService(model, time.Minute))

	_, err := gen.Generate(context.Background(), sampleTranscript(), "stress")
	if !errors.Is(err, ErrFeedbackMalformed) {
		t.Fatalf("Generate() error = %v, want ErrFeedbackMalformed", err)
	}
}

func TestGenerateFeedback_NoJSON(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"这次面试很精彩。"}}
	gen := NewFeedbackGenerator(NewAIService(model, time.Minute))

	_, err := gen.Generate(context.Background(), sampleTranscript(), "technical")
	if !errors.Is(err, ErrFeedbackNotParsable) {
		t.Fatalf("Generate() error = %v, want ErrFeedbackNotParsable", err)
	}
}
