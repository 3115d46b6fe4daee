package service

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return gdb
}

func TestRehearsalSession_Lifecycle(t *testing.T) {
	svc := NewRehearsalService(openTestDB(t))

	created, err := svc.CreateSession("user-1", "后端工程师面试", "technical", "请自我介绍。")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if created.FirstQuestion != "请自我介绍。" {
		t.Fatalf("FirstQuestion = %q", created.FirstQuestion)
	}

	session, err := svc.GetSession("user-1", created.SessionID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.Status != db.RehearsalStatusActive {
		t.Fatalf("Status = %q, want active", session.Status)
	}
	if len(session.Messages) != 1 || session.Messages[0].Role != "assistant" {
		t.Fatalf("transcript not seeded with opening question: %+v", session.Messages)
	}

	// Other users cannot see the session.
	if _, err := svc.GetSession("user-2", created.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("cross-user GetSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestAppendMessage_TurnLimit(t *testing.T) {
	svc := NewRehearsalService(openTestDB(t))

	created, err := svc.CreateSession("user-1", "scenario", "behavioral", "开场问题")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	// Opening question counts as turn 1; fill to the cap of 20.
	for i := 0; i < MaxMessages-1; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		if err := svc.AppendMessage(created.SessionID, role, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("AppendMessage(%d) error = %v", i, err)
		}
	}

	// The cap applies regardless of role.
	if err := svc.AppendMessage(created.SessionID, "user", "over the cap"); !errors.Is(err, ErrTurnLimitExceeded) {
		t.Fatalf("AppendMessage() error = %v, want ErrTurnLimitExceeded", err)
	}
	if err := svc.AppendMessage(created.SessionID, "assistant", "over the cap"); !errors.Is(err, ErrTurnLimitExceeded) {
		t.Fatalf("AppendMessage() error = %v, want ErrTurnLimitExceeded", err)
	}

	turns, err := svc.GetMessages(created.SessionID)
	if err != nil {
		t.Fatalf("GetMessages() error = %v", err)
	}
	if len(turns) != MaxMessages {
		t.Fatalf("len(turns) = %d, want %d", len(turns), MaxMessages)
	}
}

func TestStoreFeedback_CompletesSession(t *testing.T) {
	svc := NewRehearsalService(openTestDB(t))

	created, err := svc.CreateSession("user-1", "scenario", "stress", "开场问题")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	feedback := &models.RehearsalFeedback{
		Scores:  models.FeedbackScores{ExpressionClarity: 80, ContentDepth: 70, Adaptability: 75, OverallImpression: 78, Total: 75.4},
		Summary: "不错",
	}
	if err := svc.StoreFeedback(created.SessionID, feedback); err != nil {
		t.Fatalf("StoreFeedback() error = %v", err)
	}

	session, err := svc.GetSession("user-1", created.SessionID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.Status != db.RehearsalStatusCompleted {
		t.Fatalf("Status = %q, want completed", session.Status)
	}
	if len(session.Feedback) == 0 {
		t.Fatalf("feedback not stored")
	}
}

func TestRehearsalHistory_NewestFirst(t *testing.T) {
	svc := NewRehearsalService(openTestDB(t))

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession("user-1", fmt.Sprintf("scenario %d", i), "technical", "q"); err != nil {
			t.Fatalf("CreateSession(%d) error = %v", i, err)
		}
	}

	items, total, err := svc.History("user-1", 1, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("total = %d, len(items) = %d, want 3/3", total, len(items))
	}
	for _, item := range items {
		if item.Status != db.RehearsalStatusActive {
			t.Fatalf("item status = %q, want active", item.Status)
		}
	}
}
