package models

import (
	"time"
)

// UserStatus is the lifecycle state of a user record.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusDeleted  UserStatus = "deleted"
)

// Valid reports whether s belongs to the status vocabulary.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusDeleted:
		return true
	}
	return false
}

// User represents a user record in the database
// swagger:model User
type User struct {
	ID        int64      `json:"id" db:"id"`                                    // Store-generated identifier
	Username  string     `json:"username" db:"username"`                        // Display name, not unique
	Email     string     `json:"email" db:"email"`                              // Unique across all rows, deleted included
	UserData  UserData   `json:"user_data" db:"user_data" swaggertype:"object"` // Opaque JSON object
	Status    UserStatus `json:"status" db:"status"`                            // active, inactive or deleted
	CreatedAt time.Time  `json:"created_at" db:"created_at"`                    // Creation timestamp
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`                    // Last mutation timestamp
}

// CreateUserInput carries the fields accepted by the new-user webhook.
type CreateUserInput struct {
	Username string   `json:"username" validate:"required,max=100"`
	Email    string   `json:"email" validate:"required,email,max=255"`
	UserData UserData `json:"user_data" validate:"omitempty,json_object"`
}

// UserUpdate is a partial user. Nil fields are left untouched.
type UserUpdate struct {
	Username *string     `json:"username" validate:"omitempty,min=1,max=100"`
	Email    *string     `json:"email" validate:"omitempty,email,max=255"`
	UserData UserData    `json:"user_data" validate:"omitempty,json_object"`
	Status   *UserStatus `json:"status" validate:"omitempty,user_status"`
}

// Empty reports whether no field is present.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.UserData == nil && u.Status == nil
}

// ListUsersInput carries the raw listing query before clamping.
type ListUsersInput struct {
	Limit        int         `json:"limit"`
	Offset       int         `json:"offset"`
	StatusFilter *UserStatus `json:"status_filter" validate:"omitempty,user_status"`
}

// UserPage is the pagination envelope returned by the users listing.
// swagger:model UserPage
type UserPage struct {
	Items   []User `json:"items"`
	Total   int64  `json:"total"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	HasMore bool   `json:"has_more"`
	Pages   int64  `json:"pages"`
}
