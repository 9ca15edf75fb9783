// Package gormstore implements store.Store on a relational database through
// gorm. SQLite (a single file) and MySQL are supported.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"go-shop/internal/models"
	"go-shop/internal/store"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Store struct {
	db *gorm.DB
	// lockRows adds SELECT ... FOR UPDATE to cart reads made inside a
	// transaction. SQLite has no row locks; its single connection already
	// serializes writers.
	lockRows bool
	inTx     bool
}

type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Infof(format, args...)
}

// Open connects to the database and migrates the schema.
func Open(driver, dsn string, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if log == nil {
		log = zap.NewNop()
	}
	gormLog := logger.New(zapWriter{log: log.Named("gorm").Sugar()}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{db: db, lockRows: driver != DriverSQLite}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Users() store.UserRepository       { return userRepo{s.db} }
func (s *Store) Products() store.ProductRepository { return productRepo{s.db} }
func (s *Store) Carts() store.CartRepository       { return cartRepo{db: s.db, lock: s.inTx && s.lockRows} }
func (s *Store) Orders() store.OrderRepository     { return orderRepo{s.db} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, lockRows: s.lockRows, inTx: true})
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return err
	}
}

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return store.ErrDuplicate
	}
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

type productRepo struct{ db *gorm.DB }

func (r productRepo) codeTaken(ctx context.Context, code string, exceptID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("code = ? AND id <> ?", code, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r productRepo) Create(ctx context.Context, p *models.Product) error {
	taken, err := r.codeTaken(ctx, p.Code, 0)
	if err != nil {
		return err
	}
	if taken {
		return store.ErrDuplicate
	}
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r productRepo) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r productRepo) List(ctx context.Context) ([]*models.Product, error) {
	var list []*models.Product
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r productRepo) Update(ctx context.Context, p *models.Product) error {
	current, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	taken, err := r.codeTaken(ctx, p.Code, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return store.ErrDuplicate
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = time.Now()
	return translate(r.db.WithContext(ctx).Model(&models.Product{ID: p.ID}).
		Select("name", "code", "price", "description", "category", "image_url", "updated_at").
		Updates(p).Error)
}

func (r productRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

type cartRepo struct {
	db   *gorm.DB
	lock bool
}

func (r cartRepo) Get(ctx context.Context, id int64) (*models.CartItem, error) {
	var it models.CartItem
	if err := r.db.WithContext(ctx).First(&it, id).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r cartRepo) Find(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	var it models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&it).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r cartRepo) Create(ctx context.Context, item *models.CartItem) error {
	if _, err := r.Find(ctx, item.UserID, item.ProductID); err == nil {
		return store.ErrDuplicate
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r cartRepo) SetQuantity(ctx context.Context, id int64, quantity int) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r cartRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.CartItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r cartRepo) Lines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	q := r.db.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.id AS item_id, ci.user_id, ci.product_id, ci.quantity, p.name, p.code, p.price").
		Joins("JOIN products AS p ON p.id = ci.product_id").
		Where("ci.user_id = ?", userID).
		Order("ci.id")
	if r.lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var lines []models.CartLine
	if err := q.Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r cartRepo) ClearUser(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r cartRepo) DeleteByProduct(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.CartItem{}).Error
}

type orderRepo struct{ db *gorm.DB }

func (r orderRepo) Create(ctx context.Context, o *models.Order) error {
	return translate(r.db.WithContext(ctx).Create(o).Error)
}

func (r orderRepo) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

func (r orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := r.withItems(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r orderRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	var list []*models.Order
	if err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
