package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-shop/internal/apperr"
	"go-shop/internal/auth"
	"go-shop/internal/models"
	"go-shop/internal/store"
)

type OrderService struct {
	store store.Store
	log   *zap.Logger

	// Statistics for monitoring
	stats struct {
		sync.RWMutex
		totalOrders     int64
		failedCheckouts int64
		conflicts       int64
	}
}

func NewOrderService(st store.Store, log *zap.Logger) *OrderService {
	return &OrderService{store: st, log: log}
}

// Checkout turns the caller's cart into a pending order. Snapshot, order
// insert, item inserts and cart clearing run in one transaction; a failure
// at any step leaves both the cart and the order tables untouched.
func (s *OrderService) Checkout(ctx context.Context, actor models.Identity) (*models.CheckoutResult, error) {
	var order *models.Order
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		lines, err := tx.Carts().Lines(ctx, actor.UserID)
		if err != nil {
			return apperr.Internal("snapshot cart", err)
		}
		if len(lines) == 0 {
			return apperr.State("cart is empty")
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			total = total.Add(lineTotal(l.Price, l.Quantity))
			items = append(items, models.OrderItem{
				ProductID:   l.ProductID,
				ProductName: l.Name,
				Quantity:    l.Quantity,
				UnitPrice:   l.Price,
			})
		}

		order = &models.Order{
			UserID: actor.UserID,
			Total:  toAmount(total),
			Status: models.OrderStatusPending,
			Items:  items,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return apperr.Internal("create order", err)
		}

		removed, err := tx.Carts().ClearUser(ctx, actor.UserID)
		if err != nil {
			return apperr.Internal("clear cart", err)
		}
		// Fewer rows than snapshotted means another checkout consumed them.
		if removed < int64(len(lines)) {
			return apperr.Conflict("cart changed during checkout")
		}
		return nil
	})
	if err != nil {
		s.recordFailure(err)
		if apperr.KindOf(err) == apperr.KindInternal {
			s.log.Error("checkout failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		}
		return nil, err
	}

	s.stats.Lock()
	s.stats.totalOrders++
	s.stats.Unlock()

	s.log.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", actor.UserID),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)),
	)
	return &models.CheckoutResult{
		OrderID:   order.ID,
		Total:     order.Total,
		ItemCount: len(order.Items),
	}, nil
}

func (s *OrderService) recordFailure(err error) {
	s.stats.Lock()
	defer s.stats.Unlock()
	s.stats.failedCheckouts++
	if apperr.Is(err, apperr.KindConflict) {
		s.stats.conflicts++
	}
}

// ListOrders returns the caller's order history, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, actor models.Identity) ([]*models.Order, error) {
	list, err := s.store.Orders().ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Internal("list orders", err)
	}
	if list == nil {
		list = []*models.Order{}
	}
	return list, nil
}

// GetOrder returns one order. Customers only see their own orders; other
// users' orders are reported as missing. Admins see every order.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Identity, id int64) (*models.Order, error) {
	o, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err, "order not found")
	}
	if o.UserID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, apperr.NotFound("order not found")
	}
	return o, nil
}

// GetStats reports checkout counters since process start. Admin only.
func (s *OrderService) GetStats(actor models.Identity) (map[string]int64, error) {
	if err := auth.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	s.stats.RLock()
	defer s.stats.RUnlock()

	return map[string]int64{
		"total_orders":     s.stats.totalOrders,
		"failed_checkouts": s.stats.failedCheckouts,
		"conflicts":        s.stats.conflicts,
	}, nil
}
