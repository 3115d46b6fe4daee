package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/mingjing/mingjing/pkg/db"
)

func TestFirstQuestion_BuildsScenarioMessage(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"请先做一个自我介绍。"}}
	interviewer := NewRehearsalInterviewer(NewAIService(model, time.Minute))

	question, err := interviewer.FirstQuestion(context.Background(), "technical", "后端工程师，3 年经验")
	if err != nil {
		t.Fatalf("FirstQuestion() error = %v", err)
	}
	if question != "请先做一个自我介绍。" {
		t.Fatalf("question = %q", question)
	}

	input := model.lastInput
	if len(input) != 2 {
		t.Fatalf("len(input) = %d, want 2", len(input))
	}
	if input[0].Role != schema.System {
		t.Fatalf("input[0].Role = %s, want system", input[0].Role)
	}
	want := "面试场景：后端工程师，3 年经验\n\n请开始面试，提出你的第一个问题。"
	if input[1].Content != want {
		t.Fatalf("input[1].Content = %q, want %q", input[1].Content, want)
	}
}

func TestFirstQuestion_UnknownStyle(t *testing.T) {
	interviewer := NewRehearsalInterviewer(NewAIService(&fakeChatModel{}, time.Minute))
	if _, err := interviewer.FirstQuestion(context.Background(), "casual", "scenario"); err == nil {
		t.Fatalf("FirstQuestion() expected error for unknown style")
	}
}

func TestRespond_PrependsPrimingPair(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"谢谢你的回答。下一个问题……"}}
	interviewer := NewRehearsalInterviewer(NewAIService(model, time.Minute))

	turns := []db.ChatTurn{
		{Role: "assistant", Content: "请自我介绍。"},
		{Role: "user", Content: "我叫李明，做后端开发。"},
	}
	content, isEnd, err := interviewer.Respond(context.Background(), "behavioral", "产品经理面试", turns, nil)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if isEnd {
		t.Fatalf("isEnd = true, want false")
	}
	if content != "谢谢你的回答。下一个问题……" {
		t.Fatalf("content = %q", content)
	}

	// system + scenario pair + opening question + latest user message
	input := model.lastInput
	if len(input) != 5 {
		t.Fatalf("len(input) = %d, want 5", len(input))
	}
	if input[1].Role != schema.User || input[1].Content != "面试场景：产品经理面试" {
		t.Fatalf("input[1] = %+v, want scenario priming message", input[1])
	}
	if input[2].Role != schema.Assistant || input[2].Content != "好的，我已了解面试场景。请开始。" {
		t.Fatalf("input[2] = %+v, want scenario acknowledgment", input[2])
	}
	if input[4].Role != schema.User || input[4].Content != "我叫李明，做后端开发。" {
		t.Fatalf("input[4] = %+v, want latest user message", input[4])
	}
}

func TestRespond_StripsEndMarker(t *testing.T) {
	model := &fakeChatModel{chunks: []string{"感谢你的时间，面试到此结束。\n[INTERVIEW_END]"}}
	interviewer := NewRehearsalInterviewer(NewAIService(model, time.Minute))

	turns := []db.ChatTurn{{Role: "user", Content: "好的，谢谢。"}}
	content, isEnd, err := interviewer.Respond(context.Background(), "stress", "scenario", turns, nil)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !isEnd {
		t.Fatalf("isEnd = false, want true")
	}
	if strings.Contains(content, "[INTERVIEW_END]") {
		t.Fatalf("marker not stripped: %q", content)
	}
	if content != "感谢你的时间，面试到此结束。" {
		t.Fatalf("content = %q", content)
	}
}
