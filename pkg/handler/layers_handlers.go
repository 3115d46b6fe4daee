package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/service"
	"github.com/mingjing/mingjing/pkg/utils"
)

// LayersHandler handles confusion analysis requests.
type LayersHandler struct {
	sessions *service.LayersService
	analyzer *service.LayersAnalyzer
	auth     *service.AuthService
	logger   *slog.Logger
}

func NewLayersHandler(sessions *service.LayersService, analyzer *service.LayersAnalyzer, auth *service.AuthService) *LayersHandler {
	return &LayersHandler{
		sessions: sessions,
		analyzer: analyzer,
		auth:     auth,
		logger:   utils.GetLogger(),
	}
}

func (h *LayersHandler) RegisterRoutes(r *gin.RouterGroup, aiLimiter gin.HandlerFunc) {
	r.POST("/session", h.CreateSession)
	r.POST("/analyze", aiLimiter, h.Analyze)
	r.GET("/history", h.History)
	r.GET("/session/:id", h.GetSession)
}

// CreateSession creates an empty analysis session
// POST /api/v1/layers/session
func (h *LayersHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(models.CodeValidationError, "请求参数验证失败"))
		return
	}

	result, err := h.sessions.CreateSession(UserID(c), req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	c.JSON(http.StatusOK, models.Success(result))
}

// Analyze streams the four-layer analysis over SSE. Layers are delivered as
// whole objects once parsed, then the suggestions, then a done event.
// POST /api/v1/layers/analyze
func (h *LayersHandler) Analyze(c *gin.Context) {
	var req models.LayersAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(models.CodeValidationError, "请求参数验证失败"))
		return
	}

	userID := UserID(c)
	if _, err := h.sessions.GetSession(userID, req.SessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, models.Failure(models.CodeNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	sse := NewSSEWriter(c)
	ctx := c.Request.Context()

	result, err := h.analyzer.Analyze(ctx, req.InputText, func(layer models.Layer) {
		sse.WriteEvent("layer", layer)
	})
	if err != nil {
		if errors.Is(err, service.ErrStreamCancelled) {
			return
		}
		sse.WriteEvent("error", gin.H{"type": "error", "message": err.Error()})
		return
	}

	if err := h.sessions.UpdateResult(req.SessionID, req.InputText, result); err != nil {
		h.logger.Error("Failed to persist layer analysis", "error", err, "sessionID", req.SessionID)
		sse.WriteEvent("error", gin.H{"type": "error", "message": "服务器内部错误，请稍后重试"})
		return
	}
	if err := h.auth.IncrementUsage(userID); err != nil {
		h.logger.Warn("Failed to increment usage count", "error", err, "userID", userID)
	}

	sse.WriteEvent("suggestions", gin.H{"suggestions": result.Suggestions})
	sse.WriteEvent("done", gin.H{"sessionId": req.SessionID, "status": "completed"})
}

// History lists the user's analyses, newest first
// GET /api/v1/layers/history
func (h *LayersHandler) History(c *gin.Context) {
	page, limit := paginationParams(c)

	items, total, err := h.sessions.History(UserID(c), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	c.JSON(http.StatusOK, models.Paginated(items, page, limit, total))
}

// GetSession returns one full analysis
// GET /api/v1/layers/session/:id
func (h *LayersHandler) GetSession(c *gin.Context) {
	session, err := h.sessions.GetSession(UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, models.Failure(models.CodeNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	c.JSON(http.StatusOK, models.Success(session))
}
