package domain

import (
	"context"
	"errors"
)

// Store errors. Repository implementations wrap or return these so the Logic
// layer can tell the outcomes apart with errors.Is.
var (
	// ErrDuplicateUser is returned by Create when the username is already taken.
	ErrDuplicateUser = errors.New("duplicate user")

	// ErrUserNotFound is returned by the lookups when no row matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable wraps connectivity and driver failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// UserRecord represents a user row including the password hash.
// It never leaves the Logic layer; use Info for anything sent to a client.
type UserRecord struct {
	ID           string
	FirstName    string
	SurName      string
	UserName     string
	PasswordHash string
}

// Info returns the public projection of the record.
func (u UserRecord) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		FirstName: u.FirstName,
		SurName:   u.SurName,
		UserName:  u.UserName,
	}
}

// NewUser carries the fields needed to insert a user.
type NewUser struct {
	FirstName    string
	SurName      string
	UserName     string
	PasswordHash string
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL or pgx directly.
type UserRepository interface {
	// Create inserts a new user and returns the generated user ID.
	// Returns ErrDuplicateUser when the username already exists.
	Create(ctx context.Context, user NewUser) (string, error)

	// GetByUserName returns the user matching the given username.
	// Returns ErrUserNotFound when no user is found.
	GetByUserName(ctx context.Context, userName string) (*UserRecord, error)

	// GetByID returns the user with the given ID.
	// Returns ErrUserNotFound when no user is found.
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// List returns every user ordered by username, without password hashes.
	List(ctx context.Context) ([]UserInfo, error)
}
