package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User types mirror the membership tiers of the marketplace pages.
const (
	UserTypeBuyer  = "buyer"
	UserTypeSeller = "seller"
	UserTypeBoth   = "both"
)

// Admin roles. Any of these bypasses user-type checks.
const (
	RoleNone             = "none"
	RoleSuperAdmin       = "super_admin"
	RoleContentAdmin     = "content_admin"
	RoleMarketplaceAdmin = "marketplace_admin"
)

// AdminRoles lists every role treated as an administrator.
var AdminRoles = []string{RoleSuperAdmin, RoleContentAdmin, RoleMarketplaceAdmin}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	UserType     string    `json:"user_type" db:"user_type"`
	Role         string    `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks basic user fields
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if u.DisplayName == "" {
		return fmt.Errorf("display name is required")
	}
	if len(u.DisplayName) < 2 || len(u.DisplayName) > 100 {
		return fmt.Errorf("display name length invalid")
	}
	switch u.UserType {
	case UserTypeBuyer, UserTypeSeller, UserTypeBoth:
	default:
		return fmt.Errorf("invalid user type")
	}
	return nil
}

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
	UserType    string `json:"user_type"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
