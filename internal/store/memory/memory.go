// Package memory is an in-process Store backed by maps. A fresh store is
// created per process or per test; nothing is shared between instances.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-shop/internal/models"
	"go-shop/internal/store"
)

type data struct {
	users    map[int64]*models.User
	products map[int64]*models.Product
	cart     map[int64]*models.CartItem
	orders   map[int64]*models.Order

	nextUser      int64
	nextProduct   int64
	nextCartItem  int64
	nextOrder     int64
	nextOrderItem int64
}

func newData() *data {
	return &data{
		users:    make(map[int64]*models.User),
		products: make(map[int64]*models.Product),
		cart:     make(map[int64]*models.CartItem),
		orders:   make(map[int64]*models.Order),
	}
}

func (d *data) clone() *data {
	c := *d
	c.users = make(map[int64]*models.User, len(d.users))
	for k, v := range d.users {
		u := *v
		c.users[k] = &u
	}
	c.products = make(map[int64]*models.Product, len(d.products))
	for k, v := range d.products {
		p := *v
		c.products[k] = &p
	}
	c.cart = make(map[int64]*models.CartItem, len(d.cart))
	for k, v := range d.cart {
		it := *v
		c.cart[k] = &it
	}
	c.orders = make(map[int64]*models.Order, len(d.orders))
	for k, v := range d.orders {
		c.orders[k] = copyOrder(v)
	}
	return &c
}

// Store guards all tables with one lock. The view handed to WithinTx runs
// with that lock held for the whole transaction.
type Store struct {
	mu  *sync.RWMutex
	d   *data
	tx  bool
	now func() time.Time
}

func New() *Store {
	return &Store{mu: &sync.RWMutex{}, d: newData(), now: time.Now}
}

func (s *Store) lock() {
	if !s.tx {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.tx {
		s.mu.Unlock()
	}
}

func (s *Store) rlock() {
	if !s.tx {
		s.mu.RLock()
	}
}

func (s *Store) runlock() {
	if !s.tx {
		s.mu.RUnlock()
	}
}

func (s *Store) Users() store.UserRepository       { return userRepo{s} }
func (s *Store) Products() store.ProductRepository { return productRepo{s} }
func (s *Store) Carts() store.CartRepository       { return cartRepo{s} }
func (s *Store) Orders() store.OrderRepository     { return orderRepo{s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(&Store{mu: s.mu, d: s.d, tx: true, now: s.now}); err != nil {
		*s.d = *snapshot
		return err
	}
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	r.s.lock()
	defer r.s.unlock()

	for _, existing := range r.s.d.users {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	r.s.d.nextUser++
	now := r.s.now()
	u.ID = r.s.d.nextUser
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	r.s.d.users[u.ID] = &stored
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.rlock()
	defer r.s.runlock()

	u, ok := r.s.d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.rlock()
	defer r.s.runlock()

	for _, u := range r.s.d.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r userRepo) Count(ctx context.Context) (int64, error) {
	r.s.rlock()
	defer r.s.runlock()
	return int64(len(r.s.d.users)), nil
}

type productRepo struct{ s *Store }

func (r productRepo) codeTaken(code string, exceptID int64) bool {
	for _, p := range r.s.d.products {
		if p.Code == code && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r productRepo) Create(ctx context.Context, p *models.Product) error {
	r.s.lock()
	defer r.s.unlock()

	if r.codeTaken(p.Code, 0) {
		return store.ErrDuplicate
	}
	r.s.d.nextProduct++
	now := r.s.now()
	p.ID = r.s.d.nextProduct
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	r.s.d.products[p.ID] = &stored
	return nil
}

func (r productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	r.s.rlock()
	defer r.s.runlock()

	p, ok := r.s.d.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r productRepo) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	r.s.rlock()
	defer r.s.runlock()

	for _, p := range r.s.d.products {
		if p.Code == code {
			out := *p
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r productRepo) List(ctx context.Context) ([]*models.Product, error) {
	r.s.rlock()
	defer r.s.runlock()

	list := make([]*models.Product, 0, len(r.s.d.products))
	for _, p := range r.s.d.products {
		out := *p
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r productRepo) Update(ctx context.Context, p *models.Product) error {
	r.s.lock()
	defer r.s.unlock()

	current, ok := r.s.d.products[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	if r.codeTaken(p.Code, p.ID) {
		return store.ErrDuplicate
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = r.s.now()
	stored := *p
	r.s.d.products[p.ID] = &stored
	return nil
}

func (r productRepo) Delete(ctx context.Context, id int64) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.d.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.d.products, id)
	return nil
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	r.s.rlock()
	defer r.s.runlock()
	return int64(len(r.s.d.products)), nil
}

type cartRepo struct{ s *Store }

func (r cartRepo) Get(ctx context.Context, id int64) (*models.CartItem, error) {
	r.s.rlock()
	defer r.s.runlock()

	it, ok := r.s.d.cart[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *it
	return &out, nil
}

func (r cartRepo) Find(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	r.s.rlock()
	defer r.s.runlock()

	for _, it := range r.s.d.cart {
		if it.UserID == userID && it.ProductID == productID {
			out := *it
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r cartRepo) Create(ctx context.Context, item *models.CartItem) error {
	r.s.lock()
	defer r.s.unlock()

	for _, it := range r.s.d.cart {
		if it.UserID == item.UserID && it.ProductID == item.ProductID {
			return store.ErrDuplicate
		}
	}
	r.s.d.nextCartItem++
	item.ID = r.s.d.nextCartItem
	item.CreatedAt = r.s.now()
	stored := *item
	r.s.d.cart[item.ID] = &stored
	return nil
}

func (r cartRepo) SetQuantity(ctx context.Context, id int64, quantity int) error {
	r.s.lock()
	defer r.s.unlock()

	it, ok := r.s.d.cart[id]
	if !ok {
		return store.ErrNotFound
	}
	it.Quantity = quantity
	return nil
}

func (r cartRepo) Delete(ctx context.Context, id int64) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.d.cart[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.d.cart, id)
	return nil
}

func (r cartRepo) Lines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	r.s.rlock()
	defer r.s.runlock()

	var lines []models.CartLine
	for _, it := range r.s.d.cart {
		if it.UserID != userID {
			continue
		}
		p, ok := r.s.d.products[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{
			ItemID:    it.ID,
			UserID:    it.UserID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Name:      p.Name,
			Code:      p.Code,
			Price:     p.Price,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
	return lines, nil
}

func (r cartRepo) ClearUser(ctx context.Context, userID int64) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	var n int64
	for id, it := range r.s.d.cart {
		if it.UserID == userID {
			delete(r.s.d.cart, id)
			n++
		}
	}
	return n, nil
}

func (r cartRepo) DeleteByProduct(ctx context.Context, productID int64) error {
	r.s.lock()
	defer r.s.unlock()

	for id, it := range r.s.d.cart {
		if it.ProductID == productID {
			delete(r.s.d.cart, id)
		}
	}
	return nil
}

type orderRepo struct{ s *Store }

func copyOrder(o *models.Order) *models.Order {
	out := *o
	out.Items = append([]models.OrderItem(nil), o.Items...)
	return &out
}

func (r orderRepo) Create(ctx context.Context, o *models.Order) error {
	r.s.lock()
	defer r.s.unlock()

	r.s.d.nextOrder++
	o.ID = r.s.d.nextOrder
	o.CreatedAt = r.s.now()
	for i := range o.Items {
		r.s.d.nextOrderItem++
		o.Items[i].ID = r.s.d.nextOrderItem
		o.Items[i].OrderID = o.ID
	}
	r.s.d.orders[o.ID] = copyOrder(o)
	return nil
}

func (r orderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.s.rlock()
	defer r.s.runlock()

	o, ok := r.s.d.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r orderRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	r.s.rlock()
	defer r.s.runlock()

	var list []*models.Order
	for _, o := range r.s.d.orders {
		if o.UserID == userID {
			list = append(list, copyOrder(o))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}
