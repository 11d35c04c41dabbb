package user

import (
	"context"
	"errors"
	"strings"

	"github.com/medbook/medbook/internal/platform/apperr"
	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/pkg/pagination"
)

type Service struct {
	users       Repository
	tokens      *auth.TokenIssuer
	revocations auth.RevocationStore
}

func NewService(users Repository, tokens *auth.TokenIssuer, revocations auth.RevocationStore) *Service {
	return &Service{users: users, tokens: tokens, revocations: revocations}
}

// Register creates a patient account. Elevated roles are only granted
// through the admin CLI.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	return s.create(ctx, req, auth.RolePatient)
}

// CreateAdmin creates an account with the admin role.
func (s *Service) CreateAdmin(ctx context.Context, req RegisterRequest) (int64, error) {
	return s.create(ctx, req, auth.RoleAdmin)
}

func (s *Service) create(ctx context.Context, req RegisterRequest, role string) (int64, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return 0, apperr.Storage("Failed to register user", err)
	}
	id, err := s.users.Create(ctx, &User{
		Username: strings.TrimSpace(req.Username),
		Email:    normalizeEmail(req.Email),
		Password: hash,
		Role:     role,
	})
	if err != nil {
		// duplicate email lands here too; the unique constraint decides
		return 0, apperr.Storage("Failed to register user", err)
	}
	return id, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Storage("Failed to log in", err)
	}
	if !auth.CheckPassword(u.Password, req.Password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	token, _, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Storage("Failed to log in", err)
	}
	u.Password = ""
	return &LoginResponse{Token: token, User: u}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Storage("Failed to log out", err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, id auth.Identity) (*User, error) {
	return s.Get(ctx, id, id.UserID)
}

func (s *Service) List(ctx context.Context, id auth.Identity, page pagination.Params) ([]*User, error) {
	if !auth.CanAccess(id, auth.User(0), auth.ActionList) {
		return nil, apperr.Forbidden("Not allowed to list users")
	}
	items, err := s.users.ListAll(ctx, page)
	if err != nil {
		return nil, apperr.Storage("Failed to get users", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id auth.Identity, userID int64) (*User, error) {
	if !auth.CanAccess(id, auth.User(userID), auth.ActionRead) {
		return nil, apperr.Forbidden("Not allowed to view this user")
	}
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Storage("Failed to get user", err)
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id auth.Identity, userID int64, req UpdateRequest) error {
	if !auth.CanAccess(id, auth.User(userID), auth.ActionUpdate) {
		return apperr.Forbidden("Not allowed to update this user")
	}
	current, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Storage("Failed to update user", err)
	}

	username, email := current.Username, current.Email
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
	}

	n, err := s.users.Update(ctx, userID, username, email)
	if err != nil {
		return apperr.Storage("Failed to update user", err)
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id auth.Identity, userID int64) error {
	if !auth.CanAccess(id, auth.User(userID), auth.ActionDelete) {
		return apperr.Forbidden("Not allowed to delete this user")
	}
	n, err := s.users.Delete(ctx, userID)
	if err != nil {
		return apperr.Storage("Failed to delete user", err)
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
