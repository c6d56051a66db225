package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/repository"
)

const tokenBytes = 24

// Register creates a new identity with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "Username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidInput, "Password cannot be used: %v", err)
	}

	user, err := s.store.CreateUser(ctx, username, string(hash))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, domain.NewError(domain.KindAlreadyExists, "Username already taken")
	}
	if err != nil {
		return nil, domain.Persistence(err, "failed to create user")
	}

	slog.Info("user registered", "user", user.Username, "user_id", user.ID)
	return user, nil
}

// Login verifies the credential and issues a new session token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.AuthResponse, error) {
	creds, err := s.store.GetCredentials(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, domain.Persistence(err, "failed to load user")
	}
	invalid := domain.NewError(domain.KindUnauthorized, "Invalid username or password")
	if creds == nil {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.store.CreateSession(ctx, token, creds.ID); err != nil {
		return nil, domain.Persistence(err, "failed to create session")
	}

	return &domain.AuthResponse{Token: token, Username: creds.Username}, nil
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.NewError(domain.KindUnauthorized, "Invalid or expired token")
	}
	user, err := s.store.GetUserByToken(ctx, token)
	if err != nil {
		return nil, domain.Persistence(err, "failed to resolve token")
	}
	if user == nil {
		return nil, domain.NewError(domain.KindUnauthorized, "Invalid or expired token")
	}
	return user, nil
}

// ResolveName looks a user up by name. It returns (nil, nil) if unknown.
func (s *Service) ResolveName(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.Persistence(err, "failed to resolve user")
	}
	return user, nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
