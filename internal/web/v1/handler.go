package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/cookie-auth-service/internal/core/domain"
	"github.com/duynhne/cookie-auth-service/internal/logger"
	logicv1 "github.com/duynhne/cookie-auth-service/internal/logic/v1"
	"github.com/duynhne/cookie-auth-service/middleware"
)

// Handler groups HTTP handlers for the auth API v1.
// Dependencies are injected via the constructor — no global state.
//
// Every route answers with the domain.AuthResult envelope. Failure causes are
// logged here and never sent to the client.
type Handler struct {
	auth *logicv1.AuthService
}

// NewHandler creates a new Handler with the given AuthService.
func NewHandler(auth *logicv1.AuthService) *Handler {
	return &Handler{auth: auth}
}

// RegisterRoutes registers all auth API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/users", h.Register)
	rg.POST("/auth", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/auth", h.GetSession)
	rg.GET("/users", h.ListUsers)
}

// Register handles POST /users.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.RegisterRequest
	if !bind(ctx, c, span, &req) {
		return
	}

	result, err := h.auth.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Warn().Err(err).Str("username", req.UserName).Msg("Registration failed")
	}

	h.respond(c, "register", result)
}

// Login handles POST /auth and sets the session cookie on success.
func (h *Handler) Login(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	var req domain.LoginRequest
	if !bind(ctx, c, span, &req) {
		return
	}

	result, err := h.auth.Login(ctx, req)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Warn().Err(err).Str("username", req.UserName).Msg("Login failed")
	}

	h.respond(c, "login", result)
}

// Logout handles POST /logout and clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	h.respond(c, "logout", h.auth.Logout(ctx))
}

// GetSession handles GET /auth: it returns the user behind the session cookie.
func (h *Handler) GetSession(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	result, err := h.auth.VerifySession(ctx, cookieHeader(c))
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Info().Err(err).Msg("Session rejected")
	}

	h.respond(c, "verify", result)
}

// ListUsers handles GET /users for an authenticated caller.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx, span := startSpan(c)
	defer span.End()

	result, err := h.auth.ListUsers(ctx, cookieHeader(c))
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Info().Err(err).Msg("List users rejected")
	}

	h.respond(c, "list_users", result)
}

// Fallback answers unknown routes with a failed envelope:
// 200 for GET, mirroring the API catch-all, 404 otherwise.
func (h *Handler) Fallback(c *gin.Context) {
	status := http.StatusNotFound
	if c.Request.Method == http.MethodGet {
		status = http.StatusOK
	}
	c.JSON(status, domain.Failure())
}

func (h *Handler) respond(c *gin.Context, operation string, result domain.AuthResult) {
	middleware.RecordAuthOperation(operation, result.Success)
	if result.Cookie != nil {
		http.SetCookie(c.Writer, result.Cookie)
	}
	c.JSON(http.StatusOK, result)
}

func startSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
}

// bind decodes the JSON body, answering 400 with a failed envelope when it is invalid.
func bind(ctx context.Context, c *gin.Context, span trace.Span, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		logger.FromContext(ctx).Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, domain.Failure())
		return false
	}
	span.SetAttributes(attribute.Bool("request.valid", true))
	return true
}

// cookieHeader returns the raw Cookie header, joining repeated headers.
func cookieHeader(c *gin.Context) string {
	return strings.Join(c.Request.Header.Values("Cookie"), "; ")
}
