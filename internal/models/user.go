package models

import "time"

// User is an authentication account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile is the user document kept alongside the account.
type Profile struct {
	UserID    string    `db:"user_id" json:"-"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	Religion  string    `db:"religion" json:"religion"`
	Birth     string    `db:"birth" json:"birth"`
	Status    string    `db:"status" json:"status"`
	Photo     string    `db:"photo" json:"photo"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ProfilePatch carries the fields a profile update may merge. Nil fields are left untouched.
type ProfilePatch struct {
	Status *string `json:"status" validate:"omitempty,max=120"`
	Photo  *string `json:"photo"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Status == nil && p.Photo == nil
}
