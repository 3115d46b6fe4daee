package models

import "time"

// Interviewer styles.
const (
	StyleBehavioral = "behavioral"
	StyleTechnical  = "technical"
	StyleStress     = "stress"
)

type RehearsalCreateRequest struct {
	Scenario         string `json:"scenario" binding:"required,min=1,max=2000"`
	InterviewerStyle string `json:"interviewerStyle" binding:"required,oneof=behavioral technical stress"`
}

type RehearsalMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required,max=100"`
	Content   string `json:"content" binding:"required,min=1,max=5000"`
}

type RehearsalCreated struct {
	SessionID     string    `json:"sessionId"`
	FirstQuestion string    `json:"firstQuestion"`
	CreatedAt     time.Time `json:"createdAt"`
}

type FeedbackDimension struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Feedback   string  `json:"feedback"`
	Suggestion string  `json:"suggestion"`
}

// FeedbackScores weights: clarity 0.25, depth 0.30, adaptability 0.25,
// impression 0.20.
type FeedbackScores struct {
	ExpressionClarity float64 `json:"expressionClarity"`
	ContentDepth      float64 `json:"contentDepth"`
	Adaptability      float64 `json:"adaptability"`
	OverallImpression float64 `json:"overallImpression"`
	Total             float64 `json:"total"`
}

type RehearsalFeedback struct {
	Scores       FeedbackScores      `json:"scores"`
	Dimensions   []FeedbackDimension `json:"dimensions"`
	Highlights   []string            `json:"highlights"`
	Improvements []string            `json:"improvements"`
	Summary      string              `json:"summary"`
}

type RehearsalHistoryItem struct {
	ID               string    `json:"id"`
	Scenario         string    `json:"scenario"`
	InterviewerStyle string    `json:"interviewerStyle"`
	Status           string    `json:"status"`
	Feedback         any       `json:"feedback,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
