package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/service"
	"github.com/mingjing/mingjing/pkg/utils"
)

// totalRounds is the nominal interview length shown to the client for
// pacing; the hard cap lives in the rehearsal service.
const totalRounds = 8

// RehearsalHandler handles mock interview requests.
type RehearsalHandler struct {
	sessions    *service.RehearsalService
	interviewer *service.RehearsalInterviewer
	feedback    *service.FeedbackGenerator
	auth        *service.AuthService
	logger      *slog.Logger
}

func NewRehearsalHandler(sessions *service.RehearsalService, interviewer *service.RehearsalInterviewer, feedback *service.FeedbackGenerator, auth *service.AuthService) *RehearsalHandler {
	return &RehearsalHandler{
		sessions:    sessions,
		interviewer: interviewer,
		feedback:    feedback,
		auth:        auth,
		logger:      utils.GetLogger(),
	}
}

func (h *RehearsalHandler) RegisterRoutes(r *gin.RouterGroup, aiLimiter gin.HandlerFunc) {
	r.POST("/session", aiLimiter, h.CreateSession)
	r.POST("/message", aiLimiter, h.Message)
	r.POST("/end/:sessionId", h.End)
	r.GET("/feedback/:sessionId", h.Feedback)
	r.GET("/history", h.History)
	r.GET("/session/:id", h.GetSession)
}

// CreateSession starts an interview: the model produces the opening question
// which seeds the transcript.
// POST /api/v1/rehearsal/session
func (h *RehearsalHandler) CreateSession(c *gin.Context) {
	var req models.RehearsalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(models.CodeValidationError, "请求参数验证失败"))
		return
	}

	firstQuestion, err := h.interviewer.FirstQuestion(c.Request.Context(), req.InterviewerStyle, req.Scenario)
	if err != nil {
		h.logger.Error("Failed to get first question", "error", err)
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "面试官响应失败，请重试"))
		return
	}

	result, err := h.sessions.CreateSession(UserID(c), req.Scenario, req.InterviewerStyle, firstQuestion)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	c.JSON(http.StatusOK, models.Success(result))
}

// Message appends a candidate answer and streams the interviewer's reply.
// POST /api/v1/rehearsal/message
func (h *RehearsalHandler) Message(c *gin.Context) {
	var req models.RehearsalMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Failure(models.CodeValidationError, "请求参数验证失败"))
		return
	}

	session, err := h.sessions.GetSession(UserID(c), req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, models.Failure(models.CodeNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	if session.Status == db.RehearsalStatusCompleted {
		c.JSON(http.StatusBadRequest, models.Failure("SESSION_COMPLETED", service.ErrSessionCompleted.Error()))
		return
	}

	if err := h.sessions.AppendMessage(req.SessionID, "user", req.Content); err != nil {
		if errors.Is(err, service.ErrTurnLimitExceeded) {
			c.JSON(http.StatusBadRequest, models.Failure("TURN_LIMIT_EXCEEDED", err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	turns, err := h.sessions.GetMessages(req.SessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	sse := NewSSEWriter(c)
	ctx := c.Request.Context()

	content, isEnd, err := h.interviewer.Respond(ctx, session.InterviewerStyle, session.Scenario, turns, func(chunk string) {
		sse.WriteEvent("chunk", gin.H{"type": "content", "content": chunk})
	})
	if err != nil {
		if errors.Is(err, service.ErrStreamCancelled) {
			return
		}
		sse.WriteEvent("error", gin.H{"type": "error", "message": err.Error()})
		return
	}

	if err := h.sessions.AppendMessage(req.SessionID, "assistant", content); err != nil {
		h.logger.Error("Failed to store interviewer reply", "error", err, "sessionID", req.SessionID)
		sse.WriteEvent("error", gin.H{"type": "error", "message": "服务器内部错误，请稍后重试"})
		return
	}
	if isEnd {
		if err := h.sessions.Complete(req.SessionID); err != nil {
			h.logger.Error("Failed to complete session", "error", err, "sessionID", req.SessionID)
		}
	}

	roundNumber := 0
	for _, t := range turns {
		if t.Role == "user" {
			roundNumber++
		}
	}

	sse.WriteEvent("done", gin.H{
		"type":           "message",
		"content":        content,
		"isInterviewEnd": isEnd,
		"roundNumber":    roundNumber,
		"totalRounds":    totalRounds,
	})
}

// End finishes the interview and generates feedback. Idempotent: once the
// feedback is stored, repeat calls return without regenerating it.
// POST /api/v1/rehearsal/end/:sessionId
func (h *RehearsalHandler) End(c *gin.Context) {
	sessionID := c.Param("sessionId")
	userID := UserID(c)

	session, err := h.sessions.GetSession(userID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, models.Failure(models.CodeNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	if session.Status == db.RehearsalStatusCompleted && len(session.Feedback) > 0 {
		c.JSON(http.StatusOK, models.Success(gin.H{"feedbackId": sessionID, "status": "already_completed"}))
		return
	}

	turns, err := h.sessions.GetMessages(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	feedback, err := h.feedback.Generate(c.Request.Context(), turns, session.InterviewerStyle)
	if err != nil {
		h.logger.Error("Failed to generate feedback", "error", err, "sessionID", sessionID)
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, err.Error()))
		return
	}

	if err := h.sessions.StoreFeedback(sessionID, feedback); err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	if err := h.auth.IncrementUsage(userID); err != nil {
		h.logger.Warn("Failed to increment usage count", "error", err, "userID", userID)
	}

	c.JSON(http.StatusOK, models.Success(gin.H{"feedbackId": sessionID, "status": "completed"}))
}

// Feedback returns the stored report, or 202 while it has not been
// generated yet.
// GET /api/v1/rehearsal/feedback/:sessionId
func (h *RehearsalHandler) Feedback(c *gin.Context) {
	session, err := h.sessions.GetSession(UserID(c), c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, models.Failure(models.CodeNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}

	if len(session.Feedback) == 0 {
		c.JSON(http.StatusAccepted, models.Success(gin.H{"status": "generating", "message": "反馈正在生成中，请稍后再试"}))
		return
	}

	c.JSON(http.StatusOK, models.Success(json.RawMessage(session.Feedback)))
}

// History lists the user's interviews, newest first
// GET /api/v1/rehearsal/history
func (h *RehearsalHandler) History(c *gin.Context) {
	page, limit := paginationParams(c)

	items, total, err := h.sessions.History(UserID(c), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.Failure(models.CodeInternalError, "服务器内部错误，请稍后重试"))
		return
	}
	c.JSON(http.StatusOK, models.Paginated(items, page, limit, total))
}

// GetSession returns one full interview session
// GET /api/v1/rehearsal/session/:id
func (h *RehearsalHandler) GetSession(c *gin.Context) {
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
