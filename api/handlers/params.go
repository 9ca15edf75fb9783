package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"go-shop/api/middleware"
	"go-shop/internal/apperr"
	"go-shop/internal/models"
)

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// bindJSON decodes the body into req. Failures become Validation errors.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return models.ValidationError(err)
	}
	return nil
}

// currentUser returns the identity set by middleware.RequireAuth.
func currentUser(c *gin.Context) models.Identity {
	id, _ := middleware.CurrentUser(c)
	return id
}
