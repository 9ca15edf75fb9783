package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-shop/api/response"
	"go-shop/internal/apperr"
	"go-shop/internal/models"
	"go-shop/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered",
		"data":    user,
	})
}

// POST /api/login
// A wrong password answers 400, the status the web client expects.
func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		if apperr.Is(err, apperr.KindAuthentication) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err)
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
