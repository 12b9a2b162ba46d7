package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin    = "admin"
	RoleSecurity = "security"
	RoleVisitor  = "visitor"
)

type Account struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // never serialized
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	FirebaseUID  *string    `json:"firebase_uid,omitempty" db:"firebase_uid"`
	Role         string     `json:"role" db:"role"`
	VisitorID    *uuid.UUID `json:"visitor_id,omitempty" db:"visitor_id"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type RegisterStaffRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
	Role    string `json:"role"`
}

// VisitorSummary is the linked-visitor payload attached to auth responses for
// visitor-role accounts.
type VisitorSummary struct {
	ID     uuid.UUID `json:"id"`
	QRCode string    `json:"qrCode"`
}
