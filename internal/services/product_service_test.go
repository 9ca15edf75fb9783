package services

import (
	"context"
	"testing"

	"go-shop/internal/apperr"
	"go-shop/internal/models"
)

func TestCreateProduct(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *env) {
		ctx := context.Background()
		p, err := e.products.Create(ctx, e.admin, models.CreateProductRequest{
			Name: "Camisa Casual", Code: "CAM-001", Price: 29.99, Description: "algodón",
		})
		if err != nil {
			t.Fatal(err)
		}
		if p.ID == 0 || p.CreatedBy != "admin@test.com" || p.Category != models.DefaultCategory {
			t.Fatalf("created = %+v", p)
		}

		list, err := e.products.GetAllProducts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].Code != "CAM-001" {
			t.Fatalf("list = %+v", list)
		}

		_, err = e.products.Create(ctx, e.admin, models.CreateProductRequest{
			Name: "Otra", Code: "CAM-001", Price: 10, Description: "dup",
		})
		if !apperr.Is(err, apperr.KindConflict) {
			t.Fatalf("duplicate code: %v", err)
		}
	})
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, price := range []float64{0, -5} {
		_, err := e.products.Create(ctx, e.admin, models.CreateProductRequest{
			Name: "Camisa", Code: "CAM-001", Price: price, Description: "d",
		})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("price %v: %v", price, err)
		}
	}
	list, _ := e.products.GetAllProducts(ctx)
	if len(list) != 0 {
		t.Fatalf("products created: %d", len(list))
	}
}

func TestNonAdminCannotMutateCatalog(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.customer(t, "ana@x.com")

	_, err := e.products.Create(ctx, ana, models.CreateProductRequest{
		Name: "Camisa", Code: "CAM-001", Price: 29.99, Description: "d",
	})
	if !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("customer create: %v", err)
	}
	if _, err := e.products.GetProductByCode(ctx, "CAM-001"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("product should not exist: %v", err)
	}

	p := e.product(t, "PAN-001", 49.99)
	price := 1.0
	if _, err := e.products.Update(ctx, ana, p.ID, models.UpdateProductRequest{Price: &price}); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("customer update: %v", err)
	}
	if err := e.products.Delete(ctx, ana, p.ID); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("customer delete: %v", err)
	}
}

func TestGetProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, "CAM-001", 29.99)

	byID, err := e.products.GetProductByID(ctx, p.ID)
	if err != nil || byID.Code != "CAM-001" {
		t.Fatalf("by id = %+v, %v", byID, err)
	}
	byCode, err := e.products.GetProductByCode(ctx, " CAM-001 ")
	if err != nil || byCode.ID != p.ID {
		t.Fatalf("by code = %+v, %v", byCode, err)
	}
	if _, err := e.products.GetProductByID(ctx, 999); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing id: %v", err)
	}
	if _, err := e.products.GetProductByCode(ctx, "NOPE"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing code: %v", err)
	}
}

func TestUpdateProduct(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *env) {
		ctx := context.Background()
		p := e.product(t, "CAM-001", 29.99)
		e.product(t, "PAN-001", 49.99)

		price := 19.99
		name := "Camisa Rebajada"
		got, err := e.products.Update(ctx, e.admin, p.ID, models.UpdateProductRequest{Price: &price, Name: &name})
		if err != nil {
			t.Fatal(err)
		}
		if got.Price != 19.99 || got.Name != name || got.Code != "CAM-001" || got.Description != "demo" {
			t.Fatalf("updated = %+v", got)
		}

		zero := 0.0
		if _, err := e.products.Update(ctx, e.admin, p.ID, models.UpdateProductRequest{Price: &zero}); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("zero price: %v", err)
		}
		taken := "PAN-001"
		if _, err := e.products.Update(ctx, e.admin, p.ID, models.UpdateProductRequest{Code: &taken}); !apperr.Is(err, apperr.KindConflict) {
			t.Fatalf("taken code: %v", err)
		}
		if _, err := e.products.Update(ctx, e.admin, 999, models.UpdateProductRequest{Price: &price}); !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("missing product: %v", err)
		}

		stored, _ := e.products.GetProductByID(ctx, p.ID)
		if stored.Price != 19.99 || stored.Code != "CAM-001" {
			t.Fatalf("stored after failed updates = %+v", stored)
		}
	})
}

func TestDeleteProductRemovesCartRows(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *env) {
		ctx := context.Background()
		ana := e.customer(t, "ana@x.com")
		p := e.product(t, "CAM-001", 29.99)
		keep := e.product(t, "PAN-001", 49.99)
		for _, id := range []int64{p.ID, keep.ID} {
			if _, err := e.carts.AddToCart(ctx, ana, models.AddToCartRequest{ProductID: id, Quantity: 1}); err != nil {
				t.Fatal(err)
			}
		}

		if err := e.products.Delete(ctx, e.admin, p.ID); err != nil {
			t.Fatal(err)
		}
		if err := e.products.Delete(ctx, e.admin, p.ID); !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("second delete: %v", err)
		}

		view, err := e.carts.GetCart(ctx, ana)
		if err != nil {
			t.Fatal(err)
		}
		if view.ItemCount != 1 || view.Items[0].ProductID != keep.ID {
			t.Fatalf("cart after delete = %+v", view)
		}
		if _, err := e.orders.Checkout(ctx, ana); err != nil {
			t.Fatalf("checkout after product delete: %v", err)
		}
	})
}

func TestSearchProducts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if err := e.products.InitSampleData(ctx, "admin@test.com"); err != nil {
		t.Fatal(err)
	}

	got, err := e.products.SearchProducts(ctx, "jeans", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Code != "PAN-001" {
		t.Fatalf("search jeans = %+v", got)
	}

	got, _ = e.products.SearchProducts(ctx, "", "zapatos")
	if len(got) != 1 || got[0].Code != "ZAP-001" {
		t.Fatalf("category zapatos = %+v", got)
	}

	got, _ = e.products.SearchProducts(ctx, "acc", "camisas")
	if len(got) != 0 {
		t.Fatalf("mismatched filters = %+v", got)
	}

	got, _ = e.products.SearchProducts(ctx, "", "")
	if len(got) != len(sampleProducts) {
		t.Fatalf("no filters = %d", len(got))
	}
}

func TestInitSampleDataOnlyWhenEmpty(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "OWN-001", 5)
	if err := e.products.InitSampleData(ctx, "admin@test.com"); err != nil {
		t.Fatal(err)
	}
	list, _ := e.products.GetAllProducts(ctx)
	if len(list) != 1 {
		t.Fatalf("sample data inserted into non-empty catalog: %d", len(list))
	}
}
