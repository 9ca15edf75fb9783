package middleware

import (
	"github.com/gin-gonic/gin"

	"go-shop/api/response"
	"go-shop/internal/auth"
	"go-shop/internal/models"
)

const identityKey = "identity"

// RequireAuth verifies the Authorization header and stores the caller's
// identity on the context for the rest of the request.
func RequireAuth(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := guard.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(guard *auth.Guard, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := CurrentUser(c)
		if err := guard.Require(id, role); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
