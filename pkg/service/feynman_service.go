package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/utils"
)

var ErrSessionNotFound = errors.New("会话不存在")

// FeynmanService persists STAR story critique sessions.
type FeynmanService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewFeynmanService(gdb *gorm.DB) *FeynmanService {
	return &FeynmanService{
		db:     gdb,
		logger: utils.GetLogger(),
	}
}

func (s *FeynmanService) CreateSession(userID, title string) (*models.SessionCreated, error) {
	session := &db.FeynmanSession{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("create feynman session: %w", err)
	}
	return &models.SessionCreated{SessionID: session.ID, CreatedAt: session.CreatedAt}, nil
}

// GetSession loads a session scoped to its owner.
func (s *FeynmanService) GetSession(userID, sessionID string) (*db.FeynmanSession, error) {
	var session db.FeynmanSession
	err := s.db.First(&session, "id = ? AND user_id = ?", sessionID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load feynman session: %w", err)
	}
	return &session, nil
}

// UpdateResult stores the story and its parsed analysis. A session may be
// re-analyzed; the newest result wins.
func (s *FeynmanService) UpdateResult(sessionID, starStory string, result *models.FeynmanAnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}
	scoresJSON, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	return s.db.Model(&db.FeynmanSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"star_story":      starStory,
			"analysis_result": db.JSONValue(resultJSON),
			"scores":          db.JSONValue(scoresJSON),
		}).Error
}

// History returns the user's sessions newest-first.
func (s *FeynmanService) History(userID string, page, limit int) ([]models.FeynmanHistoryItem, int64, error) {
	var total int64
	if err := s.db.Model(&db.FeynmanSession{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count feynman sessions: %w", err)
	}

	var sessions []db.FeynmanSession
	err := s.db.
		Select("id", "title", "scores", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list feynman sessions: %w", err)
	}

	items := make([]models.FeynmanHistoryItem, 0, len(sessions))
	for _, sess := range sessions {
		item := models.FeynmanHistoryItem{ID: sess.ID, Title: sess.Title, CreatedAt: sess.CreatedAt}
		if len(sess.Scores) > 0 {
			item.Scores = json.RawMessage(sess.Scores)
		}
		items = append(items, item)
	}
	return items, total, nil
}
