package user

type Role string

const (
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleDriver, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Password string `json:"-"` // plaintext, never exposed in JSON
	Vehicle  string `json:"vehicle,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u User) IsDriver() bool { return u.Role == RoleDriver }

// NewUserRequest creates a driver account. Name and vehicle are trimmed by the store.
type NewUserRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=120"`
	Password string `json:"password" binding:"required,notblank,max=72"`
	Vehicle  string `json:"vehicle" binding:"required,notblank,max=120"`
}

type ChangePasswordRequest struct {
	NewPassword     string `json:"newPassword" binding:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,max=72"`
}

// Matches reports whether both password fields agree.
func (r ChangePasswordRequest) Matches() bool {
	return r.NewPassword == r.ConfirmPassword
}
