package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-shop/internal/apperr"
	"go-shop/internal/auth"
	"go-shop/internal/models"
	"go-shop/internal/store"
)

type UserService struct {
	store  store.Store
	hasher auth.Hasher
	tokens auth.TokenService
	log    *zap.Logger
}

func NewUserService(st store.Store, hasher auth.Hasher, tokens auth.TokenService, log *zap.Logger) *UserService {
	return &UserService{store: st, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a customer account. Role elevation is never possible
// through registration.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Normalize()
	if err := models.Validate(&req); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("lookup user", err)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: digest,
		Role:         models.RoleCustomer,
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("create user", err)
	}

	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// Login verifies credentials and issues a token carrying the stored role.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Normalize()
	if err := models.Validate(&req); err != nil {
		return nil, err
	}

	u, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr("lookup user", err, "user not found")
	}
	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		s.log.Info("login rejected", zap.Int64("user_id", u.ID))
		return nil, apperr.New(apperr.KindAuthentication, "incorrect password")
	}

	id := models.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	token, exp, err := s.tokens.Issue(id)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
	}, nil
}

// Me returns the stored record of the caller.
func (s *UserService) Me(ctx context.Context, actor models.Identity) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr("get user", err, "user not found")
	}
	return u, nil
}

type SeedUser struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// EnsureDefaultUsers creates the given accounts when their email is not
// registered yet. Existing accounts are left untouched.
func (s *UserService) EnsureDefaultUsers(ctx context.Context, users []SeedUser) error {
	for _, su := range users {
		_, err := s.store.Users().GetByEmail(ctx, su.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return apperr.Internal("lookup seed user", err)
		}
		if !su.Role.Valid() {
			return apperr.Validation("seed user %s has unknown role %q", su.Email, su.Role)
		}
		digest, err := s.hasher.Hash(su.Password)
		if err != nil {
			return apperr.Internal("hash password", err)
		}
		u := &models.User{Name: su.Name, Email: su.Email, PasswordHash: digest, Role: su.Role}
		if err := s.store.Users().Create(ctx, u); err != nil {
			return apperr.Internal("create seed user", err)
		}
		s.log.Info("seed user created", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	}
	return nil
}
