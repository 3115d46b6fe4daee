package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/service"
	"github.com/mingjing/mingjing/pkg/utils"
)

// FeynmanHandler handles STAR story critique requests.
type FeynmanHandler struct {
	sessions *service.FeynmanService
	analyzer *service.FeynmanAnalyzer
	auth     *service.AuthService
	logger   *slog.Logger
}

func NewFeynmanHandler(sessions *service.FeynmanService, analyzer *service.FeynmanAnalyzer, auth *service.AuthService) *FeynmanHandler {
	return &FeynmanHandler{
		sessions: sessions,
		analyzer: analyzer,
		auth:     auth,
		logger:   utils.GetLogger(),
	}
}

// RegisterRoutes registers feynman routes under an authenticated group.
func (h *FeynmanHandler) RegisterRoutes(r *gin.RouterGroup, aiLimiter gin.HandlerFunc) {
	r.POST("/session", h.CreateSession)
	r.POST("/analyze", aiLimiter, h.Analyze)
	r.GET("/history", h.History)
	r.GET("/session/:id", h.GetSession)
}

// CreateSession creates an empty critique session
// POST /api/v1/feynman/session
func (h *FeynmanHandler) CreateSession(c *gin.Context) {
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

// Analyze streams a story critique over SSE
// POST /api/v1/feynman/analyze
func (h *FeynmanHandler) Analyze(c *gin.Context) {
	var req models.FeynmanAnalyzeRequest
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

	result, err := h.analyzer.Analyze(ctx, req.StarStory, func(chunk string) {
		sse.WriteEvent("chunk", gin.H{"type": "content", "content": chunk})
	})
	if err != nil {
		// Client-gone: close the stream without an error event.
		if errors.Is(err, service.ErrStreamCancelled) {
			return
		}
		sse.WriteEvent("error", gin.H{"type": "error", "message": err.Error()})
		return
	}

	if err := h.sessions.UpdateResult(req.SessionID, req.StarStory, result); err != nil {
		h.logger.Error("Failed to persist feynman result", "error", err, "sessionID", req.SessionID)
		sse.WriteEvent("error", gin.H{"type": "error", "message": "服务器内部错误，请稍后重试"})
		return
	}
	if err := h.auth.IncrementUsage(userID); err != nil {
		h.logger.Warn("Failed to increment usage count", "error", err, "userID", userID)
	}

	sse.WriteEvent("done", feynmanDoneEvent{Type: "result", FeynmanAnalysisResult: *result})
}

type feynmanDoneEvent struct {
	Type string `json:"type"`
	models.FeynmanAnalysisResult
}

// History lists the user's sessions, newest first
// GET /api/v1/feynman/history
func (h *FeynmanHandler) History(c *gin.Context) {
	page, limit := paginationParams(c)

	items, total, err := h.sessions.History(UserID(c), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	c.JSON(http.StatusOK, models.Paginated(items, page, limit, total))
}

// GetSession returns one full session
// GET /api/v1/feynman/session/:id
func (h *FeynmanHandler) GetSession(c *gin.Context) {
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

// paginationParams clamps history paging to page ≥ 1 and limit ∈ [1,50],
// defaulting to 10 per page.
func paginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}
