package domain

import "net/http"

// UserInfo is a user as exposed to clients: the record without its password hash.
type UserInfo struct {
	ID        string `json:"uid"`
	FirstName string `json:"firstName"`
	SurName   string `json:"surName"`
	UserName  string `json:"userName"`
}

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	SurName   string `json:"surName"`
	UserName  string `json:"userName" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /auth.
type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is the envelope returned by every auth operation.
//
// UserInfo holds a UserInfo for login and session checks, a []UserInfo for
// the user listing, an empty object for a failed login and nothing otherwise.
// Cookie, when set, must be applied to the response by the caller.
type AuthResult struct {
	Success  bool         `json:"success"`
	UserInfo any          `json:"userInfo,omitempty"`
	Cookie   *http.Cookie `json:"-"`
}

// Failure returns the generic failed envelope.
func Failure() AuthResult {
	return AuthResult{Success: false}
}
