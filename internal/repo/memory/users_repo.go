package memory

import (
	"strings"
	"sync"

	"github.com/geocoder89/fuellog/internal/domain/user"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// UsersRepo is an ordered, in-memory account list. Insertion order is the display order.
type UsersRepo struct {
	mu    sync.RWMutex
	items []user.User
}

func NewUsersRepo(seed ...user.User) *UsersRepo {
	items := make([]user.User, len(seed))
	copy(items, seed)

	return &UsersRepo{items: items}
}

func newUserID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "user-" + uuid.NewString()
	}
	return "user-" + id.String()
}

// Add appends a new driver. The role is always driver regardless of the caller.
func (r *UsersRepo) Add(req user.NewUserRequest) user.User {
	u := user.User{
		ID:       newUserID(),
		Name:     strings.TrimSpace(req.Name),
		Role:     user.RoleDriver,
		Password: req.Password,
		Vehicle:  strings.TrimSpace(req.Vehicle),
	}

	r.mu.Lock()
	r.items = append(r.items, u)
	r.mu.Unlock()

	return u
}

// UpdatePassword is a no-op for unknown ids.
func (r *UsersRepo) UpdatePassword(id, newPassword string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Password = newPassword
			return
		}
	}
}

// Delete is a no-op for unknown ids.
func (r *UsersRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return
		}
	}
}

// FindByCredentials matches name and password case-insensitively. Accounts
// without a password never match.
func (r *UsersRepo) FindByCredentials(name, password string) (user.User, bool) {
	name = fold(name)
	password = fold(password)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Password == "" {
			continue
		}
		if fold(u.Name) == name && fold(u.Password) == password {
			return u, true
		}
	}

	return user.User{}, false
}

func (r *UsersRepo) GetByID(id string) (user.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.ID == id {
			return u, true
		}
	}
	return user.User{}, false
}

// List returns a copy in insertion order, optionally restricted to one role.
func (r *UsersRepo) List(role user.Role) []user.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (r *UsersRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// fold applies Unicode case folding so "JOÃO" and "joão" compare equal.
func fold(s string) string {
	return cases.Fold().String(s)
}
