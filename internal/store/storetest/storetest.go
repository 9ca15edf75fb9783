// Package storetest holds behaviour checks every store.Store backend must
// pass. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"go-shop/internal/models"
	"go-shop/internal/store"
)

// Factory returns an empty store for a single subtest.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("UserEmailUnique", func(t *testing.T) { testUserEmailUnique(t, newStore(t)) })
	t.Run("ProductCRUD", func(t *testing.T) { testProductCRUD(t, newStore(t)) })
	t.Run("CartLinesJoin", func(t *testing.T) { testCartLinesJoin(t, newStore(t)) })
	t.Run("CartUniquePerProduct", func(t *testing.T) { testCartUniquePerProduct(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("TxCommit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
}

func mustUser(t *testing.T, s store.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Ana", Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	if err := s.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func mustProduct(t *testing.T, s store.Store, code string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Product " + code, Code: code, Price: price, Description: "d", Category: "c"}
	if err := s.Products().Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func testUserEmailUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana@x.com")
	if u.ID == 0 {
		t.Fatal("id not populated")
	}
	dup := &models.User{Name: "Other", Email: "ana@x.com", PasswordHash: "y", Role: models.RoleCustomer}
	if err := s.Users().Create(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate email: %v", err)
	}
	got, err := s.Users().GetByEmail(ctx, "ana@x.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}
	if _, err := s.Users().GetByEmail(ctx, "nobody@x.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing email: %v", err)
	}
	if n, err := s.Users().Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func testProductCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := mustProduct(t, s, "CAM-001", 29.99)
	second := mustProduct(t, s, "PAN-001", 49.99)

	if err := s.Products().Create(ctx, &models.Product{Name: "x", Code: "CAM-001", Price: 1, Description: "d"}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate code: %v", err)
	}

	list, err := s.Products().List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("List order = %v", ids(list))
	}

	byCode, err := s.Products().GetByCode(ctx, "PAN-001")
	if err != nil || byCode.ID != second.ID {
		t.Fatalf("GetByCode = %+v, %v", byCode, err)
	}

	second.Code = "CAM-001"
	if err := s.Products().Update(ctx, second); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("update to taken code: %v", err)
	}
	second.Code = "PAN-002"
	second.Price = 45
	if err := s.Products().Update(ctx, second); err != nil {
		t.Fatal(err)
	}
	got, err := s.Products().GetByID(ctx, second.ID)
	if err != nil || got.Code != "PAN-002" || got.Price != 45 {
		t.Fatalf("after update = %+v, %v", got, err)
	}

	if err := s.Products().Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Products().Delete(ctx, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Products().GetByID(ctx, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
	if err := s.Products().Update(ctx, &models.Product{ID: 999, Name: "x", Code: "Z", Price: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func testCartLinesJoin(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana@x.com")
	other := mustUser(t, s, "bob@x.com")
	cam := mustProduct(t, s, "CAM-001", 29.99)
	pan := mustProduct(t, s, "PAN-001", 49.99)

	for _, it := range []*models.CartItem{
		{UserID: u.ID, ProductID: cam.ID, Quantity: 2},
		{UserID: u.ID, ProductID: pan.ID, Quantity: 1},
		{UserID: other.ID, ProductID: cam.ID, Quantity: 4},
	} {
		if err := s.Carts().Create(ctx, it); err != nil {
			t.Fatal(err)
		}
	}

	lines, err := s.Carts().Lines(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %+v", lines)
	}
	if lines[0].Code != "CAM-001" || lines[0].Price != 29.99 || lines[0].Quantity != 2 {
		t.Fatalf("first line = %+v", lines[0])
	}

	if err := s.Carts().DeleteByProduct(ctx, cam.ID); err != nil {
		t.Fatal(err)
	}
	lines, _ = s.Carts().Lines(ctx, other.ID)
	if len(lines) != 0 {
		t.Fatalf("other user's lines after product removal = %+v", lines)
	}

	n, err := s.Carts().ClearUser(ctx, u.ID)
	if err != nil || n != 1 {
		t.Fatalf("ClearUser = %d, %v", n, err)
	}
	n, err = s.Carts().ClearUser(ctx, u.ID)
	if err != nil || n != 0 {
		t.Fatalf("second ClearUser = %d, %v", n, err)
	}
}

func testCartUniquePerProduct(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana@x.com")
	cam := mustProduct(t, s, "CAM-001", 29.99)

	item := &models.CartItem{UserID: u.ID, ProductID: cam.ID, Quantity: 2}
	if err := s.Carts().Create(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := s.Carts().Create(ctx, &models.CartItem{UserID: u.ID, ProductID: cam.ID, Quantity: 1}); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate cart row: %v", err)
	}
	if err := s.Carts().SetQuantity(ctx, item.ID, 5); err != nil {
		t.Fatal(err)
	}
	found, err := s.Carts().Find(ctx, u.ID, cam.ID)
	if err != nil || found.Quantity != 5 || found.ID != item.ID {
		t.Fatalf("Find = %+v, %v", found, err)
	}
	if err := s.Carts().Delete(ctx, item.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Carts().Get(ctx, item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get deleted item: %v", err)
	}
}

var errAbort = errors.New("abort")

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana@x.com")
	cam := mustProduct(t, s, "CAM-001", 29.99)
	if err := s.Carts().Create(ctx, &models.CartItem{UserID: u.ID, ProductID: cam.ID, Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	err := s.WithinTx(ctx, func(tx store.Store) error {
		o := &models.Order{UserID: u.ID, Total: 29.99, Status: models.OrderStatusPending,
			Items: []models.OrderItem{{ProductID: cam.ID, Quantity: 1, UnitPrice: 29.99}}}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		if _, err := tx.Carts().ClearUser(ctx, u.ID); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithinTx = %v", err)
	}

	orders, err := s.Orders().ListByUser(ctx, u.ID)
	if err != nil || len(orders) != 0 {
		t.Fatalf("orders after rollback = %d, %v", len(orders), err)
	}
	lines, err := s.Carts().Lines(ctx, u.ID)
	if err != nil || len(lines) != 1 {
		t.Fatalf("cart after rollback = %d, %v", len(lines), err)
	}
}

func testTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana@x.com")
	cam := mustProduct(t, s, "CAM-001", 29.99)

	var created *models.Order
	err := s.WithinTx(ctx, func(tx store.Store) error {
		created = &models.Order{UserID: u.ID, Total: 59.98, Status: models.OrderStatusPending,
			Items: []models.OrderItem{{ProductID: cam.ID, ProductName: cam.Name, Quantity: 2, UnitPrice: 29.99}}}
		return tx.Orders().Create(ctx, created)
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || created.Items[0].ID == 0 || created.Items[0].OrderID != created.ID {
		t.Fatalf("ids not populated: %+v", created)
	}

	got, err := s.Orders().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Total != 59.98 || len(got.Items) != 1 || got.Items[0].UnitPrice != 29.99 {
		t.Fatalf("order = %+v", got)
	}
	if _, err := s.Orders().GetByID(ctx, created.ID+100); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing order: %v", err)
	}
}

func ids(list []*models.Product) []int64 {
	out := make([]int64, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}
