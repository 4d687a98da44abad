package models

import "time"

// QuestionPatch carries the fields of a partial question update. Nil fields are left alone.
type QuestionPatch struct {
	Question    *string
	Options     *Options
	Correct     *string
	Explanation *string
	Category    *string
	Difficulty  *Difficulty
	ImageURL    *string
	UnsetImage  bool
	Topic       *string
	Source      *string
	Increment   *int
	Status      *QuestionStatus
	Order       *int
}

type UserPatch struct {
	Name              *string
	Role              *Role
	PasswordHash      *string
	GoogleID          *string
	Active            *bool
	Banned            *bool
	BannedReason      *string
	BannedAt          *time.Time
	ClearBan          bool
	ResetToken        *string
	ResetTokenExpires *time.Time
	ClearReset        bool
}
