package users

import (
	"context"
	"fmt"

	"agritrade/internal/models"
	"agritrade/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// DefaultRole is assigned when registration omits a role
const DefaultRole = "farmer"

// Service handles user registration
type Service struct {
	Store store.Store
}

// NewService creates a new user service
func NewService(s store.Store) *Service {
	return &Service{Store: s}
}

// Register creates a new user with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, username, password, fullName, role string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if len(username) > 50 {
		return nil, fmt.Errorf("username too long (max 50 characters)")
	}
	if len(password) > 100 {
		return nil, fmt.Errorf("password too long (max 100 characters)")
	}
	if role == "" {
		role = DefaultRole
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.Store.CreateUser(ctx, username, string(hashedPassword), fullName, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
