package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/fuellog/internal/domain/user"
	"github.com/google/uuid"
)

var (
	ErrBlankCredentials   = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSession          = errors.New("no active session")
	ErrViewNotAllowed     = errors.New("view not allowed for this role")
)

type View string

const (
	ViewDriver      View = "driver"
	ViewAdminReport View = "admin_report"
	ViewAdminUsers  View = "admin_users"
)

// InitialView is where a freshly logged-in user lands.
func InitialView(u user.User) View {
	if u.IsAdmin() {
		return ViewAdminReport
	}
	return ViewDriver
}

// Allows reports whether u may be shown view v. Drivers only get their own
// screen; admins move between the report and user management.
func (v View) Allows(u user.User) bool {
	switch v {
	case ViewDriver:
		return u.IsDriver()
	case ViewAdminReport, ViewAdminUsers:
		return u.IsAdmin()
	default:
		return false
	}
}

type CredentialFinder interface {
	FindByCredentials(name, password string) (user.User, bool)
}

type Session struct {
	ID        string    `json:"id"`
	User      user.User `json:"user"`
	View      View      `json:"view"`
	StartedAt time.Time `json:"startedAt"`
}

// Gate holds at most one authenticated session. Logging in replaces whatever
// session was active; there is no lockout and no expiry.
type Gate struct {
	users CredentialFinder

	mu      sync.RWMutex
	current *Session
}

func NewGate(users CredentialFinder) *Gate {
	return &Gate{users: users}
}

func (g *Gate) Login(username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return Session{}, ErrBlankCredentials
	}

	u, ok := g.users.FindByCredentials(username, password)
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	s := Session{
		ID:        uuid.NewString(),
		User:      u,
		View:      InitialView(u),
		StartedAt: time.Now().UTC(),
	}

	g.mu.Lock()
	g.current = &s
	g.mu.Unlock()

	return s, nil
}

func (g *Gate) Logout() {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()
}

func (g *Gate) Current() (Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.current == nil {
		return Session{}, false
	}
	return *g.current, true
}

// IsActive reports whether id names the session currently held.
func (g *Gate) IsActive(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.current != nil && id != "" && g.current.ID == id
}

// Get returns the session named by id while it is still the active one.
func (g *Gate) Get(id string) (Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.current == nil || id == "" || g.current.ID != id {
		return Session{}, false
	}
	return *g.current, true
}

// SwitchView changes the screen of the active session identified by id.
func (g *Gate) SwitchView(id string, v View) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil || g.current.ID != id {
		return Session{}, ErrNoSession
	}
	if !v.Allows(g.current.User) {
		return Session{}, ErrViewNotAllowed
	}

	g.current.View = v
	return *g.current, nil
}
