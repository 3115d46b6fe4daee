package db

import "time"

// LayerAnalysis holds a four-layer confusion analysis of a user's text,
// together with the generated improvement suggestions.
type LayerAnalysis struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;index;not null" json:"userId"`
	Title       string    `gorm:"size:255" json:"title"`
	InputText   string    `gorm:"type:text;not null" json:"inputText"`
	Layers      JSONValue `gorm:"type:text" json:"layers,omitempty"`
	Suggestions JSONValue `gorm:"type:text" json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (LayerAnalysis) TableName() string {
	return "layer_analyses"
}
