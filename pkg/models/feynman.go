package models

import "time"

// ========== Requests ==========

type CreateSessionRequest struct {
	Title string `json:"title" binding:"max=200"`
}

type FeynmanAnalyzeRequest struct {
	SessionID string `json:"sessionId" binding:"required,max=100"`
	StarStory string `json:"starStory" binding:"required,min=1,max=10000"`
}

// ========== Results ==========

// FeynmanScores holds the three clarity dimensions and the weighted total:
// total = udi*0.4 + ddi*0.3 + cci*0.3.
type FeynmanScores struct {
	UDI   float64 `json:"udi"`
	DDI   float64 `json:"ddi"`
	CCI   float64 `json:"cci"`
	Total float64 `json:"total"`
}

type FeynmanDimensionAnalysis struct {
	Score    float64  `json:"score"`
	Feedback string   `json:"feedback"`
	Issues   []string `json:"issues"`
}

type FeynmanImprovement struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Example    string `json:"example"`
}

type FeynmanDimensions struct {
	UDI FeynmanDimensionAnalysis `json:"udi"`
	DDI FeynmanDimensionAnalysis `json:"ddi"`
	CCI FeynmanDimensionAnalysis `json:"cci"`
}

type FeynmanAnalysisResult struct {
	Scores       FeynmanScores        `json:"scores"`
	Analysis     FeynmanDimensions    `json:"analysis"`
	Improvements []FeynmanImprovement `json:"improvements"`
	Summary      string               `json:"summary"`
}

// ========== Responses ==========

type SessionCreated struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

type FeynmanHistoryItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Scores    any       `json:"scores,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
