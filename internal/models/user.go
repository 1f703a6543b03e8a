package models

import (
	"time"
)

type Role string

const (
	RoleLead       Role = "lead"
	RoleTeamMember Role = "team_member"
)

func (r Role) Valid() bool {
	return r == RoleLead || r == RoleTeamMember
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;not null"`
	Role         Role      `json:"role" gorm:"size:20;not null;default:'team_member'"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the identity projection joined onto tasks and logs.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (u *User) IsLead() bool {
	return u.Role == RoleLead
}

func (u *User) IsTeamMember() bool {
	return u.Role == RoleTeamMember
}

// Actor is the authenticated identity a request runs as.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func (a Actor) IsLead() bool {
	return a.Role == RoleLead
}
