package domain

import (
	"context"
	"time"
)

type User struct {
	ID int `json:"id"`
	Username string `json:"username" gorm:"notNull;uniqueIndex"`

	// Password is only ever set on incoming requests. It is hashed into
	// PasswordHash and cleared before the user is persisted.
	Password string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-"`

	// Remember is the raw remember token stored in the session cookie.
	// Only its HMAC hash is persisted.
	Remember string `json:"-" gorm:"-"`
	RememberHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserService interface {
	Authenticate(username, password string) (*User, error)
	MakeRememberToken() (string, error)
	ByID(id int) (*User, error)
	ByUsername(username string) (*User, error)
	ByRemember(token string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id int) error
}
