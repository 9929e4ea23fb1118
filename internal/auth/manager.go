// Package auth implements the single-session identity manager: signup,
// login, session restore, and profile/password updates over the
// persistent store. Passwords are stored as bcrypt hashes and compared
// with bcrypt's constant-time check.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"traklio/internal/core"
	"traklio/internal/store"
)

const DefaultTimeout = 5 * time.Second

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// ErrTimeout is surfaced when the credential check exceeds the guard
	// window. The underlying store is synchronous today, so this exists
	// to keep the contract for a future remote-backed implementation.
	ErrTimeout = errors.New("authentication timed out")
)

// Manager validates credentials and tracks the single active session.
type Manager struct {
	store   store.Store
	timeout time.Duration
}

func NewManager(s store.Store, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{store: s, timeout: timeout}
}

// Signup validates the form, rejects duplicate emails and, on success,
// persists the new user and auto-authenticates it. Any failure leaves
// the user collection unchanged.
func (m *Manager) Signup(ctx context.Context, name, email, password, confirm string) (core.SessionUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	confirm = strings.TrimSpace(confirm)

	if name == "" || email == "" || password == "" || confirm == "" {
		return core.SessionUser{}, ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return core.SessionUser{}, ErrInvalidEmail
	}
	if len(password) < 6 {
		return core.SessionUser{}, ErrPasswordTooShort
	}
	if password != confirm {
		return core.SessionUser{}, ErrPasswordMismatch
	}

	users, err := m.loadUsers(ctx)
	if err != nil {
		return core.SessionUser{}, err
	}
	if _, found := findByEmail(users, email); found {
		return core.SessionUser{}, ErrEmailTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return core.SessionUser{}, fmt.Errorf("hash password: %w", err)
	}
	user := core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	users = append(users, user)
	if err := m.store.Set(ctx, store.KeyUsers, users); err != nil {
		return core.SessionUser{}, fmt.Errorf("save users: %w", err)
	}

	session := user.Session()
	if err := m.store.Set(ctx, store.KeySession, session); err != nil {
		return core.SessionUser{}, fmt.Errorf("save session: %w", err)
	}

	slog.InfoContext(ctx, "User signed up", "user_id", user.ID, "email", user.Email)
	return session, nil
}

// Login scans the user collection for a matching email and verifies the
// password. The check runs under the timeout guard; exceeding it yields
// ErrTimeout rather than an open-ended wait.
func (m *Manager) Login(ctx context.Context, email, password string) (core.SessionUser, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return core.SessionUser{}, ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return core.SessionUser{}, ErrInvalidEmail
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	type outcome struct {
		user core.User
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		users, err := m.loadUsers(cctx)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		user, found := findByEmail(users, email)
		if !found || !checkPassword(user.PasswordHash, password) {
			done <- outcome{err: ErrInvalidCredentials}
			return
		}
		done <- outcome{user: user}
	}()

	select {
	case <-cctx.Done():
		slog.WarnContext(ctx, "Login timed out", "email", email, "timeout", m.timeout)
		return core.SessionUser{}, ErrTimeout
	case out := <-done:
		if out.err != nil {
			return core.SessionUser{}, out.err
		}
		session := out.user.Session()
		if err := m.store.Set(ctx, store.KeySession, session); err != nil {
			return core.SessionUser{}, fmt.Errorf("save session: %w", err)
		}
		slog.InfoContext(ctx, "User logged in", "user_id", session.ID)
		return session, nil
	}
}

// Current restores the persisted session marker, if any. This is the
// reload path: no credentials are re-entered.
func (m *Manager) Current(ctx context.Context) (core.SessionUser, error) {
	var session core.SessionUser
	found, err := m.store.Get(ctx, store.KeySession, &session)
	if err != nil {
		return core.SessionUser{}, fmt.Errorf("load session: %w", err)
	}
	if !found || session.ID == "" {
		return core.SessionUser{}, ErrNotAuthenticated
	}
	return session, nil
}

// Logout removes the session marker. Logging out with no session is a
// no-op.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Delete(ctx, store.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	slog.InfoContext(ctx, "User logged out")
	return nil
}

// UpdateProfile rewrites the active user's name and email, rejecting an
// email already held by another account, and refreshes the session
// marker.
func (m *Manager) UpdateProfile(ctx context.Context, name, email string) (core.SessionUser, error) {
	session, err := m.Current(ctx)
	if err != nil {
		return core.SessionUser{}, err
	}

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return core.SessionUser{}, ErrMissingFields
	}
	if !strings.Contains(email, "@") {
		return core.SessionUser{}, ErrInvalidEmail
	}

	users, err := m.loadUsers(ctx)
	if err != nil {
		return core.SessionUser{}, err
	}
	for _, u := range users {
		if u.ID != session.ID && strings.EqualFold(u.Email, email) {
			return core.SessionUser{}, ErrEmailTaken
		}
	}

	updated := core.SessionUser{}
	for i, u := range users {
		if u.ID == session.ID {
			users[i].Name = name
			users[i].Email = email
			updated = users[i].Session()
			break
		}
	}
	if updated.ID == "" {
		return core.SessionUser{}, ErrNotAuthenticated
	}

	if err := m.store.Set(ctx, store.KeyUsers, users); err != nil {
		return core.SessionUser{}, fmt.Errorf("save users: %w", err)
	}
	if err := m.store.Set(ctx, store.KeySession, updated); err != nil {
		return core.SessionUser{}, fmt.Errorf("save session: %w", err)
	}

	slog.InfoContext(ctx, "Profile updated", "user_id", updated.ID)
	return updated, nil
}

// ChangePassword verifies the current password against the full user
// record (the session marker carries no password material) and stores a
// new hash.
func (m *Manager) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	session, err := m.Current(ctx)
	if err != nil {
		return err
	}

	current = strings.TrimSpace(current)
	newPassword = strings.TrimSpace(newPassword)
	confirm = strings.TrimSpace(confirm)
	if current == "" || newPassword == "" || confirm == "" {
		return ErrMissingFields
	}
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	users, err := m.loadUsers(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, u := range users {
		if u.ID == session.ID {
			idx = i
			break
		}
	}
	if idx < 0 || !checkPassword(users[idx].PasswordHash, current) {
		return ErrWrongPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	users[idx].PasswordHash = hash
	if err := m.store.Set(ctx, store.KeyUsers, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	slog.InfoContext(ctx, "Password changed", "user_id", session.ID)
	return nil
}

func (m *Manager) loadUsers(ctx context.Context) ([]core.User, error) {
	var users []core.User
	if _, err := m.store.Get(ctx, store.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func findByEmail(users []core.User, email string) (core.User, bool) {
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return core.User{}, false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func checkPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
