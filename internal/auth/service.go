package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/MarharytaFilipovych/store-application/internal/session"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetCode   = errors.New("reset code is invalid or expired")
)

type Service struct {
	users    store.UserStore
	codes    store.ResetCodeStore
	sessions *session.Manager
	codeTTL  time.Duration
}

func NewService(users store.UserStore, codes store.ResetCodeStore, sessions *session.Manager, codeTTL time.Duration) *Service {
	return &Service{
		users:    users,
		codes:    codes,
		sessions: sessions,
		codeTTL:  codeTTL,
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and opens a session. A wrong email and a wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.sessions.Create(user.ID), nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) {
	s.sessions.Delete(ctx, sessionID)
}

// ForgotPassword issues a one-time reset code for an existing account.
func (s *Service) ForgotPassword(ctx context.Context, email string) (uuid.UUID, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}

	code := &domain.ResetCode{
		Code:      uuid.New(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.codeTTL),
	}
	if err := s.codes.Save(ctx, code); err != nil {
		return uuid.Nil, err
	}
	return code.Code, nil
}

// ResetPassword consumes an unexpired code and replaces the user's password
// hash. An invalid code is a hard error, never a silent no-op.
func (s *Service) ResetPassword(ctx context.Context, email string, code uuid.UUID, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	rc, err := s.codes.Consume(ctx, code)
	if errors.Is(err, store.ErrResetCodeNotFound) {
		return ErrInvalidResetCode
	}
	if err != nil {
		return err
	}
	if rc.UserID != user.ID {
		return ErrInvalidResetCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Save(ctx, user)
}
