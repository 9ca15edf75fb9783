package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"go-shop/internal/apperr"
	"go-shop/internal/auth"
	"go-shop/internal/models"
	"go-shop/internal/store"
)

type ProductService struct {
	store store.Store
	log   *zap.Logger
}

func NewProductService(st store.Store, log *zap.Logger) *ProductService {
	return &ProductService{store: st, log: log}
}

var sampleProducts = []models.Product{
	{Name: "Camisa Casual", Code: "CAM-001", Price: 29.99, Description: "Camisa de algodón 100% casual para el día a día", Category: "camisas", ImageURL: "https://images.unsplash.com/photo-1596755094514-f87e34085b2c?auto=format&fit=crop&w=500&q=60"},
	{Name: "Pantalón Jeans", Code: "PAN-001", Price: 49.99, Description: "Jeans clásicos azules de alta calidad", Category: "pantalones", ImageURL: "https://images.unsplash.com/photo-1542272604-787c3835535d?auto=format&fit=crop&w=500&q=60"},
	{Name: "Zapatos Deportivos", Code: "ZAP-001", Price: 79.99, Description: "Zapatos deportivos para running y entrenamiento", Category: "zapatos", ImageURL: "https://images.unsplash.com/photo-1542291026-7eec264c27ff?auto=format&fit=crop&w=500&q=60"},
	{Name: "Hoodie Básico", Code: "HOO-001", Price: 39.99, Description: "Hoodie cómodo y cálido para el frío", Category: "hoodies", ImageURL: "https://images.unsplash.com/photo-1556821840-3a63f95609a7?auto=format&fit=crop&w=500&q=60"},
	{Name: "Gafas de Sol", Code: "ACC-001", Price: 24.99, Description: "Gafas de sol con protección UV 400", Category: "accesorios", ImageURL: "https://images.unsplash.com/photo-1572635196237-14b3f281503f?auto=format&fit=crop&w=500&q=60"},
}

// InitSampleData fills an empty catalog with the demo products. It is a
// no-op once any product exists.
func (s *ProductService) InitSampleData(ctx context.Context, createdBy string) error {
	n, err := s.store.Products().Count(ctx)
	if err != nil {
		return apperr.Internal("count products", err)
	}
	if n > 0 {
		return nil
	}
	for _, sample := range sampleProducts {
		p := sample
		p.CreatedBy = createdBy
		if err := s.store.Products().Create(ctx, &p); err != nil {
			return apperr.Internal("seed product", err)
		}
	}
	s.log.Info("sample products inserted", zap.Int("count", len(sampleProducts)))
	return nil
}

// Create adds a product to the catalog. Admin only.
func (s *ProductService) Create(ctx context.Context, actor models.Identity, req models.CreateProductRequest) (*models.Product, error) {
	if err := auth.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := models.Validate(&req); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        req.Name,
		Code:        req.Code,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CreatedBy:   actor.Email,
	}
	if err := s.store.Products().Create(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("product code %q already exists", p.Code)
		}
		return nil, apperr.Internal("create product", err)
	}

	s.log.Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("code", p.Code),
		zap.Int64("actor", actor.UserID),
	)
	return p, nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err, "product not found")
	}
	return p, nil
}

func (s *ProductService) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("code is required")
	}
	p, err := s.store.Products().GetByCode(ctx, code)
	if err != nil {
		return nil, storeErr("get product", err, "product not found")
	}
	return p, nil
}

// GetAllProducts lists the catalog, most recent first.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]*models.Product, error) {
	list, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, apperr.Internal("list products", err)
	}
	if list == nil {
		list = []*models.Product{}
	}
	return list, nil
}

// SearchProducts filters the catalog by a case-insensitive text match on
// name, code or description and by exact category. Empty filters match
// everything.
func (s *ProductService) SearchProducts(ctx context.Context, query, category string) ([]*models.Product, error) {
	list, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.TrimSpace(category)
	if query == "" && category == "" {
		return list, nil
	}

	results := make([]*models.Product, 0, len(list))
	for _, p := range list {
		matchesQuery := query == "" ||
			contains(p.Name, query) ||
			contains(p.Code, query) ||
			contains(p.Description, query)
		matchesCategory := category == "" || strings.EqualFold(p.Category, category)
		if matchesQuery && matchesCategory {
			results = append(results, p)
		}
	}
	return results, nil
}

// Update applies a partial update. Admin only; omitted fields keep their
// current value.
func (s *ProductService) Update(ctx context.Context, actor models.Identity, id int64, req models.UpdateProductRequest) (*models.Product, error) {
	if err := auth.RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		p, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return storeErr("get product", err, "product not found")
		}
		if err := req.Apply(p); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, p); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Conflict("product code %q already exists", p.Code)
			}
			return storeErr("update product", err, "product not found")
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product updated", zap.Int64("product_id", id), zap.Int64("actor", actor.UserID))
	return updated, nil
}

// Delete removes a product and any cart rows that reference it. Admin only.
// Order items keep their snapshot.
func (s *ProductService) Delete(ctx context.Context, actor models.Identity, id int64) error {
	if err := auth.RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.Products().Delete(ctx, id); err != nil {
			return storeErr("delete product", err, "product not found")
		}
		if err := tx.Carts().DeleteByProduct(ctx, id); err != nil {
			return apperr.Internal("delete cart rows", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("product deleted", zap.Int64("product_id", id), zap.Int64("actor", actor.UserID))
	return nil
}

// contains reports whether substr (already lower-cased) occurs in s,
// ignoring case.
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
