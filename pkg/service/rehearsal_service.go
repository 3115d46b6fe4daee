package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/utils"
)

// 8 rounds × 2 messages/round + 1 initial = 17, cap at 20 for safety.
const MaxMessages = 20

var (
	ErrTurnLimitExceeded = errors.New("对话轮次已达上限，请结束面试")
	ErrSessionCompleted  = errors.New("该面试已结束")
)

// RehearsalService persists mock interview sessions and their transcripts.
// Session state is read-modify-written on each call; concurrent writes to
// the same session can lose updates (single-user-at-a-time assumption).
type RehearsalService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRehearsalService(gdb *gorm.DB) *RehearsalService {
	return &RehearsalService{
		db:     gdb,
		logger: utils.GetLogger(),
	}
}

// CreateSession seeds the transcript with the interviewer's opening question.
func (s *RehearsalService) CreateSession(userID, scenario, style, firstQuestion string) (*models.RehearsalCreated, error) {
	session := &db.RehearsalSession{
		ID:               uuid.NewString(),
		UserID:           userID,
		Scenario:         scenario,
		InterviewerStyle: style,
		Status:           db.RehearsalStatusActive,
		Messages: db.ChatTurns{
			{Role: "assistant", Content: firstQuestion, Timestamp: time.Now().UTC()},
		},
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("create rehearsal session: %w", err)
	}
	return &models.RehearsalCreated{
		SessionID:     session.ID,
		FirstQuestion: firstQuestion,
		CreatedAt:     session.CreatedAt,
	}, nil
}

func (s *RehearsalService) GetSession(userID, sessionID string) (*db.RehearsalSession, error) {
	var session db.RehearsalSession
	err := s.db.First(&session, "id = ? AND user_id = ?", sessionID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load rehearsal session: %w", err)
	}
	return &session, nil
}

// AppendMessage adds one turn to the transcript. The cap counts messages of
// either role.
func (s *RehearsalService) AppendMessage(sessionID, role, content string) error {
	var session db.RehearsalSession
	err := s.db.First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("load rehearsal session: %w", err)
	}

	if len(session.Messages) >= MaxMessages {
		return ErrTurnLimitExceeded
	}

	updated := append(session.Messages, db.ChatTurn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	return s.db.Model(&db.RehearsalSession{}).
		Where("id = ?", sessionID).
		Update("messages", updated).Error
}

// GetMessages returns the transcript in conversation order.
func (s *RehearsalService) GetMessages(sessionID string) (db.ChatTurns, error) {
	var session db.RehearsalSession
	err := s.db.Select("messages").First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load rehearsal messages: %w", err)
	}
	return session.Messages, nil
}

// Complete marks the session finished. Called when the end marker appears;
// re-marking a completed session is a no-op.
func (s *RehearsalService) Complete(sessionID string) error {
	return s.db.Model(&db.RehearsalSession{}).
		Where("id = ?", sessionID).
		Update("status", db.RehearsalStatusCompleted).Error
}

// StoreFeedback completes the session and saves the generated report.
func (s *RehearsalService) StoreFeedback(sessionID string, feedback *models.RehearsalFeedback) error {
	feedbackJSON, err := json.Marshal(feedback)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	return s.db.Model(&db.RehearsalSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"status":   db.RehearsalStatusCompleted,
			"feedback": db.JSONValue(feedbackJSON),
		}).Error
}

func (s *RehearsalService) History(userID string, page, limit int) ([]models.RehearsalHistoryItem, int64, error) {
	var total int64
	if err := s.db.Model(&db.RehearsalSession{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count rehearsal sessions: %w", err)
	}

	var sessions []db.RehearsalSession
	err := s.db.
		Select("id", "scenario", "interviewer_style", "status", "feedback", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list rehearsal sessions: %w", err)
	}

	items := make([]models.RehearsalHistoryItem, 0, len(sessions))
	for _, sess := range sessions {
		item := models.RehearsalHistoryItem{
			ID:               sess.ID,
			Scenario:         sess.Scenario,
			InterviewerStyle: sess.InterviewerStyle,
			Status:           sess.Status,
			CreatedAt:        sess.CreatedAt,
		}
		if len(sess.Feedback) > 0 {
			item.Feedback = json.RawMessage(sess.Feedback)
		}
		items = append(items, item)
	}
	return items, total, nil
}
