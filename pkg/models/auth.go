package models

import "time"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// UserInfo is the public view of an account. UsageCount is only populated on
// the profile endpoint.
type UserInfo struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	UsageCount *int      `json:"usageCount,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type AuthResult struct {
	User  UserInfo `json:"user"`
	Token string   `json:"token"`
}
