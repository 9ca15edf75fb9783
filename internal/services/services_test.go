package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"go-shop/internal/auth"
	"go-shop/internal/models"
	"go-shop/internal/store"
	"go-shop/internal/store/gormstore"
	"go-shop/internal/store/memory"
)

type env struct {
	store    store.Store
	tokens   *auth.JWTService
	users    *UserService
	products *ProductService
	carts    *CartService
	orders   *OrderService
	admin    models.Identity
}

var backends = map[string]func(t *testing.T) store.Store{
	"memory": func(t *testing.T) store.Store { return memory.New() },
	"sqlite": func(t *testing.T) store.Store {
		s, err := gormstore.Open(gormstore.DriverSQLite, filepath.Join(t.TempDir(), "shop.db"), zap.NewNop())
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	},
}

func newEnvWith(t *testing.T, st store.Store) *env {
	t.Helper()
	log := zap.NewNop()
	tokens := auth.NewJWTService("test-secret", time.Hour)
	e := &env{
		store:    st,
		tokens:   tokens,
		users:    NewUserService(st, auth.NewBcryptHasher(bcrypt.MinCost), tokens, log),
		products: NewProductService(st, log),
		carts:    NewCartService(st, log),
		orders:   NewOrderService(st, log),
	}

	ctx := context.Background()
	if err := e.users.EnsureDefaultUsers(ctx, []SeedUser{
		{Name: "Administrador", Email: "admin@test.com", Password: "admin123", Role: models.RoleAdmin},
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	u, err := st.Users().GetByEmail(ctx, "admin@test.com")
	if err != nil {
		t.Fatal(err)
	}
	e.admin = models.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	return e
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, memory.New())
}

// eachBackend runs fn once per store backend.
func eachBackend(t *testing.T, fn func(t *testing.T, e *env)) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newEnvWith(t, open(t)))
		})
	}
}

func (e *env) customer(t *testing.T, email string) models.Identity {
	t.Helper()
	u, err := e.users.Register(context.Background(), models.RegisterRequest{Name: "Ana", Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return models.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (e *env) product(t *testing.T, code string, price float64) *models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), e.admin, models.CreateProductRequest{
		Name: "Product " + code, Code: code, Price: price, Description: "demo",
	})
	if err != nil {
		t.Fatalf("create product %s: %v", code, err)
	}
	return p
}
