package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"safe-space/auth"
	"safe-space/domain"
	"safe-space/errors"
	"safe-space/infrastructure/storage"
	"strings"
)

type IAuthService interface {
	Login(ctx context.Context, req auth.LoginRequest) (Session, error)
	Register(ctx context.Context, req auth.RegisterRequest) (Session, error)
}

// Session is what a successful login or registration hands back.
type Session struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

type AuthService struct {
	log            *slog.Logger
	userRepository storage.IUserRepository
	tokens         *auth.TokenManager
}

func NewAuthService(log *slog.Logger, repo storage.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{log: log, userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(_ context.Context, req auth.RegisterRequest) (Session, error) {
	// Business rules are checked before any expensive hashing.
	if err := auth.ValidateRegister(req); err != nil {
		return Session{}, err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	account, err := s.userRepository.CreateUser(strings.TrimSpace(req.Name), req.Email, hashedPassword, req.Role)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("Account registered", "user_id", account.ID, "role", account.Role)

	return s.session(account)
}

func (s *AuthService) Login(_ context.Context, req auth.LoginRequest) (Session, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return Session{}, errors.ErrInvalidCredentials
	}

	account, err := s.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		// Unknown emails and wrong passwords are indistinguishable to the caller.
		if errors.IsNotFound(err) {
			return Session{}, errors.ErrInvalidCredentials
		}
		return Session{}, err
	}

	match, err := auth.ComparePassword(req.Password, account.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	return s.session(account)
}

// SeedAdmin creates the admin account unless the email is already taken.
func (s *AuthService) SeedAdmin(name, email, password string) error {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}
	account, err := s.userRepository.CreateUser(name, email, hashedPassword, domain.RoleAdmin)
	if stderrors.Is(err, errors.ErrUserAlreadyExists) {
		s.log.Debug("Admin account already present", "email", email)
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info("Admin account seeded", "user_id", account.ID)
	return nil
}

func (s *AuthService) session(account domain.Account) (Session, error) {
	token, err := s.tokens.GenerateToken(domain.Identity{ID: account.ID, Role: account.Role})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: account.Profile()}, nil
}
