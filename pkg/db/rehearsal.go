package db

import "time"

// Rehearsal session status values.
const (
	RehearsalStatusActive    = "active"
	RehearsalStatusCompleted = "completed"
)

// RehearsalSession is a mock interview: the scenario, the running transcript
// and, once the interview ends, the generated feedback.
type RehearsalSession struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserID           string    `gorm:"size:36;index;not null" json:"userId"`
	Scenario         string    `gorm:"type:text;not null" json:"scenario"`
	InterviewerStyle string    `gorm:"size:32;not null" json:"interviewerStyle"`
	Messages         ChatTurns `gorm:"type:text" json:"messages"`
	Status           string    `gorm:"size:16;not null;default:active" json:"status"`
	Feedback         JSONValue `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (RehearsalSession) TableName() string {
	return "rehearsal_sessions"
}
