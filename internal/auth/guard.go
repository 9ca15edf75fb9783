package auth

import (
	"errors"
	"strings"

	"go-shop/internal/apperr"
	"go-shop/internal/models"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Guard derives the caller identity from a presented token and enforces
// role-gated access.
type Guard struct {
	tokens TokenService
}

func NewGuard(tokens TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate accepts an Authorization header value, either
// "Bearer <token>" or the bare token.
func (g *Guard) Authenticate(header string) (models.Identity, error) {
	raw := strings.TrimSpace(header)
	if scheme, rest, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "bearer") {
		raw = strings.TrimSpace(rest)
	} else if strings.EqualFold(raw, "bearer") {
		raw = ""
	}
	if raw == "" {
		return models.Identity{}, apperr.Wrap(apperr.KindAuthentication, "authentication required", ErrMissingToken)
	}
	id, err := g.tokens.Verify(raw)
	if err != nil {
		return models.Identity{}, apperr.Wrap(apperr.KindAuthentication, "invalid token", errors.Join(ErrInvalidToken, err))
	}
	return id, nil
}

// Require fails with an Authorization error unless id holds role. An
// empty identity is reported as unauthenticated.
func (g *Guard) Require(id models.Identity, role models.Role) error {
	return RequireRole(id, role)
}

func RequireRole(id models.Identity, role models.Role) error {
	if id.UserID <= 0 {
		return apperr.Wrap(apperr.KindAuthentication, "authentication required", ErrMissingToken)
	}
	if id.Role != role {
		return apperr.New(apperr.KindAuthorization, "forbidden")
	}
	return nil
}
