package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-shop/internal/apperr"
	"go-shop/internal/models"
	"go-shop/internal/store"
)

type CartService struct {
	store store.Store
	log   *zap.Logger
}

func NewCartService(st store.Store, log *zap.Logger) *CartService {
	return &CartService{store: st, log: log}
}

// AddToCart puts quantity units of a product in the caller's cart. If the
// product is already there the quantity is added to the existing row.
func (s *CartService) AddToCart(ctx context.Context, actor models.Identity, req models.AddToCartRequest) (*models.CartItem, error) {
	if req.Quantity <= 0 {
		return nil, apperr.State("quantity must be at least 1")
	}
	if req.Quantity > models.MaxItemQuantity {
		return nil, apperr.State("quantity must be at most %d", models.MaxItemQuantity)
	}
	if req.ProductID <= 0 {
		return nil, apperr.Validation("product_id is required")
	}

	var item *models.CartItem
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if _, err := tx.Products().GetByID(ctx, req.ProductID); err != nil {
			return storeErr("get product", err, "product not found")
		}

		existing, err := tx.Carts().Find(ctx, actor.UserID, req.ProductID)
		switch {
		case err == nil:
			if existing.Quantity > models.MaxItemQuantity-req.Quantity {
				return apperr.State("cart already holds %d of this product, the limit is %d", existing.Quantity, models.MaxItemQuantity)
			}
			existing.Quantity += req.Quantity
			if err := tx.Carts().SetQuantity(ctx, existing.ID, existing.Quantity); err != nil {
				return apperr.Internal("update cart item", err)
			}
			item = existing
			return nil
		case errors.Is(err, store.ErrNotFound):
			item = &models.CartItem{UserID: actor.UserID, ProductID: req.ProductID, Quantity: req.Quantity}
			if err := tx.Carts().Create(ctx, item); err != nil {
				return apperr.Internal("create cart item", err)
			}
			return nil
		default:
			return apperr.Internal("find cart item", err)
		}
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("cart item added",
		zap.Int64("user_id", actor.UserID),
		zap.Int64("product_id", req.ProductID),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

// ownedItem loads a cart item of actor. Items of other users are reported
// as missing.
func ownedItem(ctx context.Context, tx store.Store, actor models.Identity, itemID int64) (*models.CartItem, error) {
	it, err := tx.Carts().Get(ctx, itemID)
	if err != nil {
		return nil, storeErr("get cart item", err, "cart item not found")
	}
	if it.UserID != actor.UserID {
		return nil, apperr.NotFound("cart item not found")
	}
	return it, nil
}

// UpdateCartItem replaces the quantity of one of the caller's items. A
// quantity below 1 is rejected; removal goes through RemoveItem.
func (s *CartService) UpdateCartItem(ctx context.Context, actor models.Identity, itemID int64, req models.UpdateCartItemRequest) (*models.CartItem, error) {
	if req.Quantity <= 0 {
		return nil, apperr.State("quantity must be at least 1, remove the item instead")
	}
	if req.Quantity > models.MaxItemQuantity {
		return nil, apperr.State("quantity must be at most %d", models.MaxItemQuantity)
	}

	var item *models.CartItem
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		it, err := ownedItem(ctx, tx, actor, itemID)
		if err != nil {
			return err
		}
		if err := tx.Carts().SetQuantity(ctx, it.ID, req.Quantity); err != nil {
			return storeErr("update cart item", err, "cart item not found")
		}
		it.Quantity = req.Quantity
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, actor models.Identity, itemID int64) error {
	return s.store.WithinTx(ctx, func(tx store.Store) error {
		it, err := ownedItem(ctx, tx, actor, itemID)
		if err != nil {
			return err
		}
		return storeErr("delete cart item", tx.Carts().Delete(ctx, it.ID), "cart item not found")
	})
}

// ClearCart empties the caller's cart. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, actor models.Identity) error {
	n, err := s.store.Carts().ClearUser(ctx, actor.UserID)
	if err != nil {
		return apperr.Internal("clear cart", err)
	}
	s.log.Debug("cart cleared", zap.Int64("user_id", actor.UserID), zap.Int64("removed", n))
	return nil
}

// GetCart returns the caller's items priced at the current product price.
func (s *CartService) GetCart(ctx context.Context, actor models.Identity) (*models.CartView, error) {
	lines, err := s.store.Carts().Lines(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Internal("list cart", err)
	}
	return buildView(lines), nil
}

func buildView(lines []models.CartLine) *models.CartView {
	view := &models.CartView{Items: make([]models.CartLine, 0, len(lines))}
	total := decimal.Zero
	for _, l := range lines {
		sub := lineTotal(l.Price, l.Quantity)
		l.Subtotal = toAmount(sub)
		total = total.Add(sub)
		view.Items = append(view.Items, l)
	}
	view.ItemCount = len(view.Items)
	view.Total = toAmount(total)
	return view
}
