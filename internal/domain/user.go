package domain

import (
	"strings"
	"time"
)

// GlobalRole is the platform-wide role of a user.
type GlobalRole string

const (
	GlobalRoleAdmin GlobalRole = "ADMIN"
	GlobalRoleUser  GlobalRole = "USER"
)

// User is an account that can belong to organizations and teams.
type User struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	ProfilePic *string
	Role       GlobalRole
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UserSummary is the public projection of a user embedded in responses.
type UserSummary struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profilePic"`
}

// Summary projects the user for embedding.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
	}
}

// FullName joins first and last name.
func (s UserSummary) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
