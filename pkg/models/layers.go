package models

import "time"

type LayersAnalyzeRequest struct {
	SessionID string `json:"sessionId" binding:"required,max=100"`
	InputText string `json:"inputText" binding:"required,min=1,max=10000"`
}

// Layer is one level of the confusion analysis. LayerIndex runs 0-3:
// 事件层, 情绪层, 需求层, 信念层.
type Layer struct {
	LayerIndex     int      `json:"layerIndex"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	KeyInsights    []string `json:"keyInsights"`
	EditableFields []string `json:"editableFields"`
}

type Suggestion struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
	Priority  string `json:"priority"` // high, medium, low
}

type LayersAnalysisResult struct {
	Layers      []Layer      `json:"layers"`
	Suggestions []Suggestion `json:"suggestions"`
}

type LayersHistoryItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
