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

// LayersService persists confusion analysis sessions.
type LayersService struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewLayersService(gdb *gorm.DB) *LayersService {
	return &LayersService{
		db:     gdb,
		logger: utils.GetLogger(),
	}
}

func (s *LayersService) CreateSession(userID, title string) (*models.SessionCreated, error) {
	session := &db.LayerAnalysis{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("create layer analysis: %w", err)
	}
	return &models.SessionCreated{SessionID: session.ID, CreatedAt: session.CreatedAt}, nil
}

func (s *LayersService) GetSession(userID, sessionID string) (*db.LayerAnalysis, error) {
	var session db.LayerAnalysis
	err := s.db.First(&session, "id = ? AND user_id = ?", sessionID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load layer analysis: %w", err)
	}
	return &session, nil
}

func (s *LayersService) UpdateResult(sessionID, inputText string, result *models.LayersAnalysisResult) error {
	layersJSON, err := json.Marshal(result.Layers)
	if err != nil {
		return fmt.Errorf("marshal layers: %w", err)
	}
	suggestionsJSON, err := json.Marshal(result.Suggestions)
	if err != nil {
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	return s.db.Model(&db.LayerAnalysis{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"input_text":  inputText,
			"layers":      db.JSONValue(layersJSON),
			"suggestions": db.JSONValue(suggestionsJSON),
		}).Error
}

func (s *LayersService) History(userID string, page, limit int) ([]models.LayersHistoryItem, int64, error) {
	var total int64
	if err := s.db.Model(&db.LayerAnalysis{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count layer analyses: %w", err)
	}

	var sessions []db.LayerAnalysis
	err := s.db.
		Select("id", "title", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list layer analyses: %w", err)
	}

	items := make([]models.LayersHistoryItem, 0, len(sessions))
	for _, sess := range sessions {
		items = append(items, models.LayersHistoryItem{ID: sess.ID, Title: sess.Title, CreatedAt: sess.CreatedAt})
	}
	return items, total, nil
}
