package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-shop/api/response"
	"go-shop/internal/models"
	"go-shop/internal/services"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GET /api/cart
// Get current user's cart with live prices and totals
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": view,
	})
}

// POST /api/cart/items
// Add item to cart; repeated adds of the same product merge quantities
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.cartService.AddToCart(c.Request.Context(), currentUser(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    item,
	})
}

// PUT /api/cart/items/:id
// Update cart item quantity
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	itemID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.UpdateCartItemRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.cartService.UpdateCartItem(c.Request.Context(), currentUser(c), itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data":    item,
	})
}

// DELETE /api/cart/items/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	itemID, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), currentUser(c), itemID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
	})
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), currentUser(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}
