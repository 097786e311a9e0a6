package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/fuellog/internal/http/middlewares"
	"github.com/geocoder89/fuellog/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionGate interface {
	Login(username, password string) (session.Session, error)
	Logout()
	Current() (session.Session, bool)
	SwitchView(id string, v session.View) (session.Session, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, name, role, sessionID string) (string, error)
}

type LoginRecorder interface {
	ObserveLogin(result string)
}

type AuthHandler struct {
	gate    SessionGate
	tokens  TokenIssuer
	metrics LoginRecorder
	log     *slog.Logger
}

func NewAuthHandler(gate SessionGate, tokens TokenIssuer, metrics LoginRecorder, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{gate: gate, tokens: tokens, metrics: metrics, log: log}
}

// Blank fields are rejected by the gate, not by binding, so the error names
// the credential rule instead of a field.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SwitchViewRequest struct {
	View session.View `json:"view" binding:"required,oneof=driver admin_report admin_users"`
}

type sessionResponse struct {
	AccessToken string          `json:"accessToken,omitempty"`
	Session     session.Session `json:"session"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	s, err := h.gate.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrBlankCredentials):
			h.observe("blank")
			RespondBadRequest(ctx, "Username and password are required.", nil)
		case errors.Is(err, session.ErrInvalidCredentials):
			h.observe("invalid")
			h.log.InfoContext(ctx.Request.Context(), "login failed")
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid username or password.")
		default:
			RespondInternal(ctx, "Could not log in")
		}
		return
	}

	token, err := h.tokens.GenerateAccessToken(s.User.ID, s.User.Name, string(s.User.Role), s.ID)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.observe("ok")
	h.log.InfoContext(ctx.Request.Context(), "login", "user_id", s.User.ID, "role", s.User.Role, "view", s.View)

	ctx.JSON(http.StatusOK, sessionResponse{
		AccessToken: token,
		Session:     s,
	})
}

// Logout always succeeds; the token that called it is dead afterwards.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.gate.Logout()
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Session(ctx *gin.Context) {
	s, ok := h.gate.Current()
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "No active session")
		return
	}
	ctx.JSON(http.StatusOK, sessionResponse{Session: s})
}

func (h *AuthHandler) SwitchView(ctx *gin.Context) {
	var req SwitchViewRequest

	if !BindJSON(ctx, &req) {
		return
	}

	id, _ := middlewares.SessionIDFromContext(ctx)

	s, err := h.gate.SwitchView(id, req.View)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrViewNotAllowed):
			RespondForbidden(ctx, "This view is not available for your role")
		case errors.Is(err, session.ErrNoSession):
			RespondUnAuthorized(ctx, "unauthorized", "No active session")
		default:
			RespondInternal(ctx, "Could not switch view")
		}
		return
	}

	ctx.JSON(http.StatusOK, sessionResponse{Session: s})
}

func (h *AuthHandler) observe(result string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(result)
	}
}
