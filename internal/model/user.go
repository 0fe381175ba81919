package model

import (
	"github.com/google/uuid"
)

// Role is the capability class of a principal. It is derived per request
// from profile existence, never stored on the user row.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleNone    Role = "none"
)

// Actor is a principal performing an action, carrying the role resolved
// for the current request.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// User is an authenticated principal from the identity store.
type User struct {
	Base
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Name         string `db:"name" json:"name"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`

	// AccountType selects which profile gets created alongside the user.
	AccountType string `json:"account_type" binding:"required,oneof=patient doctor"`

	// Doctor signup fields
	Specialization     string `json:"specialization"`
	RegistrationNumber string `json:"registration_number"`
}

type GrantAdminRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        Role   `json:"role"`
}
