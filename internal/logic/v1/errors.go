// Package v1 provides authentication business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors that represent authentication failures.
// AuthService never exposes them to clients: every operation returns a
// domain.AuthResult envelope, and the error is handed back alongside it only
// so the web layer can log the real cause.
//
// Example Usage:
//
//	result, err := svc.Login(ctx, req)
//	if err != nil {
//	    logger.Warn().Err(err).Msg("Login failed")
//	}
//	c.JSON(http.StatusOK, result)
//
// Error Checking (for logging or metrics):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    // wrong password or unknown user
//	case errors.Is(err, logicv1.ErrStoreUnavailable):
//	    // database problem, worth an alert
//	}
package v1

import "errors"

// Sentinel errors for authentication operations.
// These errors are wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the username is unknown or the password is wrong.
	// Both cases are deliberately reported the same way.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates a valid session token names a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates the username is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrMissingToken indicates the request carried no session cookie.
	ErrMissingToken = errors.New("session token missing")

	// ErrInvalidToken indicates the session token is malformed, tampered with or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrStoreUnavailable indicates the user store could not serve the request.
	ErrStoreUnavailable = errors.New("store unavailable")
)
