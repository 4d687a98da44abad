package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID                bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Email             string        `json:"email" bson:"email"`
	Name              string        `json:"name,omitempty" bson:"name,omitempty"`
	PasswordHash      *string       `json:"-" bson:"passwordHash"`
	GoogleID          *string       `json:"-" bson:"googleId,omitempty"`
	Role              Role          `json:"role" bson:"role"`
	ResetToken        *string       `json:"-" bson:"resetToken,omitempty"`
	ResetTokenExpires *time.Time    `json:"-" bson:"resetTokenExpires,omitempty"`
	Active            bool          `json:"active" bson:"active"`
	Banned            bool          `json:"banned" bson:"banned"`
	BannedReason      *string       `json:"bannedReason" bson:"bannedReason,omitempty"`
	BannedAt          *time.Time    `json:"bannedAt" bson:"bannedAt,omitempty"`
	CreatedAt         time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) HasGoogle() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

// UserSummary is the admin list projection of a user.
type UserSummary struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	HasGoogle    bool       `json:"hasGoogle"`
	Active       bool       `json:"active"`
	Banned       bool       `json:"banned"`
	BannedReason *string    `json:"bannedReason"`
	BannedAt     *time.Time `json:"bannedAt"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID.Hex(),
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		HasGoogle:    u.HasGoogle(),
		Active:       u.Active,
		Banned:       u.Banned,
		BannedReason: u.BannedReason,
		BannedAt:     u.BannedAt,
	}
}
