// Package model defines domain entities for the application.
package model

import "time"

// User is the persisted user record.
// Optional fields are nil when not set; they are never coerced to "".
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name with a single space.
// Returns whichever name is set when only one is, and nil when neither is.
func (u *User) FullName() *string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		name := *u.FirstName + " " + *u.LastName
		return &name
	case u.FirstName != nil:
		name := *u.FirstName
		return &name
	case u.LastName != nil:
		name := *u.LastName
		return &name
	default:
		return nil
	}
}

// UserPatch carries an update. Nil fields keep the stored value.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
	IsActive  *bool
	UpdatedAt time.Time
}
