package shop

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultAdminPassword = "admin123"
	MinPasswordLen       = 4
)

type AdminSession struct {
	Logged   bool   `json:"logged"`
	Password string `json:"password"`
}

func defaultAdmin() AdminSession {
	return AdminSession{Logged: false, Password: DefaultAdminPassword}
}

func (a AdminSession) validate() error {
	if a.Password == "" {
		return errors.New("admin password is empty")
	}
	return nil
}

// Login returns the id of the current admin session. Logging in again while
// a session is open returns the same id; sessions do not survive a restart.
func (s *Store) Login(ctx context.Context, candidate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if candidate != s.admin.Password {
		return "", ErrInvalidCredentials
	}
	if !s.admin.Logged || s.session == "" {
		s.session = uuid.NewString()
	}
	s.admin.Logged = true
	s.saveAdmin(ctx)
	return s.session, nil
}

// Logout ends the current session; ids handed out before it never become
// valid again.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.admin.Logged = false
	s.session = ""
	s.saveAdmin(ctx)
}

func (s *Store) SessionActive(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin.Logged && id != "" && id == s.session
}

// ChangePassword checks the current password before the length of the new
// one, so a wrong current password is always reported first.
func (s *Store) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldPassword != s.admin.Password {
		return ErrInvalidCredentials
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	s.admin.Password = newPassword
	s.saveAdmin(ctx)
	return nil
}

func (s *Store) Admin() AdminSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

func (s *Store) AdminLogged() bool {
	return s.Admin().Logged
}
