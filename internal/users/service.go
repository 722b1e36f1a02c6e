package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/sketchbook/sketchbook/internal/errs"
	"github.com/sketchbook/sketchbook/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the login matches no user so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sketchbook-dummy-password"), bcrypt.DefaultCost)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
	cost int
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost used by Create.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Create hashes password and stores a new user.
func (s *Service) Create(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user matching login (username or email) and
// password. Unknown users and wrong passwords both yield
// errs.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, errs.ErrInvalidCredentials
	}
	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errs.ErrInvalidCredentials
	}
	return u, nil
}
