package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/fuellog/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Add(req user.NewUserRequest) user.User
	UpdatePassword(id, newPassword string)
	Delete(id string)
	GetByID(id string) (user.User, bool)
	List(role user.Role) []user.User
}

type UsersHandler struct {
	users UserStore
	log   *slog.Logger
}

func NewUsersHandler(users UserStore, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{users: users, log: log}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	role := user.Role(strings.TrimSpace(ctx.Query("role")))
	if role != "" && !role.IsValid() {
		RespondBadRequest(ctx, "Invalid role", gin.H{"role": "must be one of driver, admin"})
		return
	}

	users := h.users.List(role)
	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.NewUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u := h.users.Add(req)

	h.log.InfoContext(ctx.Request.Context(), "driver created", "user_id", u.ID)
	ctx.JSON(http.StatusCreated, u)
}

// ChangePassword never reports an unknown id; admins are not editable here.
func (h *UsersHandler) ChangePassword(ctx *gin.Context) {
	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !req.Matches() {
		RespondError(ctx, http.StatusBadRequest, "passwords_mismatch", "Passwords do not match.", nil)
		return
	}

	id := ctx.Param("id")
	if u, ok := h.users.GetByID(id); ok && u.IsAdmin() {
		RespondForbidden(ctx, "Admin accounts cannot be changed")
		return
	}

	h.users.UpdatePassword(id, req.NewPassword)
	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if u, ok := h.users.GetByID(id); ok && u.IsAdmin() {
		RespondForbidden(ctx, "Only drivers can be deleted")
		return
	}

	h.users.Delete(id)

	h.log.InfoContext(ctx.Request.Context(), "user deleted", "user_id", id)
	ctx.Status(http.StatusNoContent)
}
