package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/fuellog/internal/actorctx"
	"github.com/geocoder89/fuellog/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type SessionChecker interface {
	IsActive(sessionID string) bool
}

type AuthMiddleware struct {
	jwt      TokenVerifier
	sessions SessionChecker
}

func NewAuthMiddleware(jwt TokenVerifier, sessions SessionChecker) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, sessions: sessions}
}

func abortUnauthorized(c *gin.Context, msg string) {
	reqID, _ := c.Get(CtxRequestID)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":      "unauthorized",
			"message":   msg,
			"requestId": reqID,
		},
	})
}

// RequireAuth accepts a bearer token only while the session it was issued for
// is still the one held by the gate.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid access token")
			return
		}

		if !m.sessions.IsActive(claims.SessionID) {
			abortUnauthorized(c, "Session is no longer active")
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxNameKey, claims.Name)
		c.Set(ctxRoleKey, claims.Role)
		c.Set(ctxSessionIDKey, claims.SessionID)

		c.Request = c.Request.WithContext(actorctx.With(c.Request.Context(), actorctx.Actor{
			UserID: claims.UserID,
			Role:   claims.Role,
		}))

		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to an access_token
// query parameter for EventSource clients, which cannot set headers.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		return raw, raw != ""
	}
	if header != "" {
		return "", false
	}

	if c.Request.Method == http.MethodGet {
		raw := strings.TrimSpace(c.Query("access_token"))
		return raw, raw != ""
	}
	return "", false
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxUserIDKey)
}

func NameFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxNameKey)
}

func RoleFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxRoleKey)
}

func SessionIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxSessionIDKey)
}

func stringFromContext(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
