package db

import "time"

// FeynmanSession holds a STAR story critique: the submitted story plus the
// structured analysis and scores produced for it.
type FeynmanSession struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:36;index;not null" json:"userId"`
	Title          string    `gorm:"size:255" json:"title"`
	StarStory      string    `gorm:"type:text;not null" json:"starStory"`
	AnalysisResult JSONValue `gorm:"type:text" json:"analysisResult,omitempty"`
	Scores         JSONValue `gorm:"type:text" json:"scores,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (FeynmanSession) TableName() string {
	return "feynman_sessions"
}
