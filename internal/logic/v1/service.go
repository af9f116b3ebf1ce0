package v1

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/cookie-auth-service/internal/core/domain"
	"github.com/duynhne/cookie-auth-service/middleware"
)

// AuthService implements authentication business rules.
// It depends on the user repository interface (injected via constructor) and
// MUST NOT access the database or SQL directly.
//
// AuthService holds no per-request state; all fields are set once by
// NewAuthService and only read afterwards, so one instance serves concurrent
// requests without locking.
//
// Every operation returns a complete envelope. A non-nil error only explains
// a failed envelope and must not be shown to clients.
type AuthService struct {
	users   domain.UserRepository
	hasher  *PasswordHasher
	tokens  *TokenCodec
	cookies *SessionCookie
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, hasher *PasswordHasher, tokens *TokenCodec, cookies *SessionCookie) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		cookies: cookies,
	}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (domain.AuthResult, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.UserName),
	))
	defer span.End()

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		return domain.Failure(), err
	}

	userID, err := s.users.Create(ctx, domain.NewUser{
		FirstName:    req.FirstName,
		SurName:      req.SurName,
		UserName:     req.UserName,
		PasswordHash: passwordHash,
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("registration.success", false))
		if errors.Is(err, domain.ErrDuplicateUser) {
			return domain.Failure(), fmt.Errorf("register user %q: %w", req.UserName, ErrUserExists)
		}
		return domain.Failure(), fmt.Errorf("register user %q: %w: %w", req.UserName, ErrStoreUnavailable, err)
	}

	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return domain.AuthResult{Success: true}, nil
}

// Login checks the credentials and, on success, returns the user together
// with the session cookie the caller must set.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResult, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.UserName),
	))
	defer span.End()

	fail := func(err error) (domain.AuthResult, error) {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return loginFailure(), err
	}

	row, err := s.users.GetByUserName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Burn(req.Password)
			return fail(fmt.Errorf("authenticate user %q: %w", req.UserName, ErrInvalidCredentials))
		}
		span.RecordError(err)
		return fail(fmt.Errorf("query user %q: %w: %w", req.UserName, ErrStoreUnavailable, err))
	}

	if !s.hasher.Verify(req.Password, row.PasswordHash) {
		return fail(fmt.Errorf("authenticate user %q: %w", req.UserName, ErrInvalidCredentials))
	}

	token, err := s.tokens.Issue(row.ID)
	if err != nil {
		span.RecordError(err)
		return fail(fmt.Errorf("issue token: %w", err))
	}

	span.SetAttributes(
		attribute.String("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return domain.AuthResult{
		Success:  true,
		UserInfo: row.Info(),
		Cookie:   s.cookies.Encode(token),
	}, nil
}

// Logout returns a successful envelope carrying the expired session cookie.
// Tokens already handed out stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context) domain.AuthResult {
	_, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	return domain.AuthResult{Success: true, Cookie: s.cookies.EncodeExpired()}
}

// VerifySession resolves the user behind the session cookie in a raw Cookie header.
func (s *AuthService) VerifySession(ctx context.Context, cookieHeader string) (domain.AuthResult, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.verify_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	user, err := s.sessionUser(ctx, cookieHeader)
	if err != nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return domain.Failure(), err
	}

	span.SetAttributes(
		attribute.String("user.id", user.ID),
		attribute.Bool("session.valid", true),
	)

	return domain.AuthResult{Success: true, UserInfo: user.Info()}, nil
}

// ListUsers returns every user when the session cookie is valid.
func (s *AuthService) ListUsers(ctx context.Context, cookieHeader string) (domain.AuthResult, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.list_users", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	session, err := s.VerifySession(ctx, cookieHeader)
	if !session.Success {
		return session, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return domain.Failure(), fmt.Errorf("list users: %w: %w", ErrStoreUnavailable, err)
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))

	return domain.AuthResult{Success: true, UserInfo: users}, nil
}

func (s *AuthService) sessionUser(ctx context.Context, cookieHeader string) (*domain.UserRecord, error) {
	token, ok := s.cookies.ExtractToken(cookieHeader)
	if !ok {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup user %q: %w", claims.SubjectID(), ErrUserNotFound)
		}
		return nil, fmt.Errorf("lookup user %q: %w: %w", claims.SubjectID(), ErrStoreUnavailable, err)
	}

	return user, nil
}

// loginFailure is the failed login envelope, {"success":false,"userInfo":{}}.
func loginFailure() domain.AuthResult {
	return domain.AuthResult{Success: false, UserInfo: struct{}{}}
}
