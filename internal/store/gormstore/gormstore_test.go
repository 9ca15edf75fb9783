package gormstore

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"go-shop/internal/models"
	"go-shop/internal/store"
	"go-shop/internal/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "shop.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return openTemp(t) })
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "", nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")

	s, err := Open(DriverSQLite, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Products().Create(ctx, &models.Product{Name: "Camisa", Code: "CAM-001", Price: 29.99, Description: "d"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(DriverSQLite, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	p, err := s.Products().GetByCode(ctx, "CAM-001")
	if err != nil {
		t.Fatal(err)
	}
	if p.Price != 29.99 {
		t.Fatalf("price = %v", p.Price)
	}
}
