package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

// memDB is an in-memory stand-in for postgres. Transactions snapshot the
// tables and restore them on rollback.
type memDB struct {
	customers map[uuid.UUID]domain.Customer
	products  map[uuid.UUID]domain.Product
	orders    map[uuid.UUID]domain.Order
	items     []domain.OrderItem

	// faults makes the named operation fail on its nth call (1-based).
	faults map[string]int
	calls  map[string]int
	writes int
	txs    int
}

func newMemDB() *memDB {
	return &memDB{
		customers: map[uuid.UUID]domain.Customer{},
		products:  map[uuid.UUID]domain.Product{},
		orders:    map[uuid.UUID]domain.Order{},
		faults:    map[string]int{},
		calls:     map[string]int{},
	}
}

func (db *memDB) failOn(op string, call int) {
	db.faults[op] = call
}

func (db *memDB) hit(op string) error {
	db.calls[op]++
	if n, ok := db.faults[op]; ok && n == db.calls[op] {
		return errInjected
	}
	return nil
}

func (db *memDB) write(op string) error {
	if err := db.hit(op); err != nil {
		return err
	}
	db.writes++
	return nil
}

type snapshot struct {
	customers map[uuid.UUID]domain.Customer
	products  map[uuid.UUID]domain.Product
	orders    map[uuid.UUID]domain.Order
	items     []domain.OrderItem
}

func (db *memDB) snapshot() snapshot {
	s := snapshot{
		customers: make(map[uuid.UUID]domain.Customer, len(db.customers)),
		products:  make(map[uuid.UUID]domain.Product, len(db.products)),
		orders:    make(map[uuid.UUID]domain.Order, len(db.orders)),
		items:     append([]domain.OrderItem(nil), db.items...),
	}
	for k, v := range db.customers {
		s.customers[k] = v
	}
	for k, v := range db.products {
		s.products[k] = v
	}
	for k, v := range db.orders {
		s.orders[k] = v
	}
	return s
}

func (db *memDB) restore(s snapshot) {
	db.customers = s.customers
	db.products = s.products
	db.orders = s.orders
	db.items = s.items
}

func (db *memDB) addCustomer(first, last, email string) *domain.Customer {
	c := domain.Customer{ID: uuid.New(), FirstName: first, LastName: last, Email: email, CreatedAt: time.Now().UTC()}
	db.customers[c.ID] = c
	return &c
}

func (db *memDB) addProduct(name, price string, stock int) *domain.Product {
	p := domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsAvailable:   true,
	}
	db.products[p.ID] = p
	return &p
}

func (db *memDB) stock(id uuid.UUID) int {
	return db.products[id].StockQuantity
}

type fakeStore struct {
	db   *memDB
	inTx bool
}

func newFakeStore(db *memDB) *fakeStore {
	return &fakeStore{db: db}
}

func (s *fakeStore) Customers() repository.CustomerRepository { return fakeCustomers{s.db} }
func (s *fakeStore) Products() repository.ProductRepository   { return fakeProducts{s.db} }
func (s *fakeStore) Orders() repository.OrderRepository       { return fakeOrders{s.db} }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := s.db.hit("Begin"); err != nil {
		return err
	}

	s.db.txs++
	snap := s.db.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.db.restore(snap)
			panic(p)
		}
	}()

	if err := fn(&fakeStore{db: s.db, inTx: true}); err != nil {
		s.db.restore(snap)
		return err
	}
	return nil
}

type fakeCustomers struct{ db *memDB }

func (r fakeCustomers) Create(ctx context.Context, c *domain.Customer) error {
	for _, existing := range r.db.customers {
		if existing.Email == c.Email {
			return repository.ErrCustomerEmailTaken
		}
	}
	if err := r.db.write("Customers.Create"); err != nil {
		return err
	}
	r.db.customers[c.ID] = *c
	return nil
}

func (r fakeCustomers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	if err := r.db.hit("Customers.FindByID"); err != nil {
		return nil, err
	}
	c, ok := r.db.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &c, nil
}

func (r fakeCustomers) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if err := r.db.hit("Customers.FindByEmail"); err != nil {
		return nil, err
	}
	for _, c := range r.db.customers {
		if strings.EqualFold(c.Email, email) {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (r fakeCustomers) List(ctx context.Context, page, pageSize int) ([]*domain.Customer, int, error) {
	out := []*domain.Customer{}
	for _, c := range r.db.customers {
		c := c
		out = append(out, &c)
	}
	return out, len(out), nil
}

func (r fakeCustomers) Count(ctx context.Context) (int, error) {
	if err := r.db.hit("Customers.Count"); err != nil {
		return 0, err
	}
	return len(r.db.customers), nil
}

type fakeProducts struct{ db *memDB }

func (r fakeProducts) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.write("Products.Create"); err != nil {
		return err
	}
	r.db.products[p.ID] = *p
	return nil
}

func (r fakeProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := r.db.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r fakeProducts) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	if err := r.db.hit("Products.FindByIDs"); err != nil {
		return nil, err
	}
	out := []*domain.Product{}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok && !seen[id] {
			seen[id] = true
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r fakeProducts) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	out := []*domain.Product{}
	for _, p := range r.db.products {
		p := p
		out = append(out, &p)
	}
	return out, len(out), nil
}

func (r fakeProducts) LockBelowStock(ctx context.Context, minStock int) ([]*domain.Product, error) {
	if err := r.db.hit("Products.LockBelowStock"); err != nil {
		return nil, err
	}
	out := []*domain.Product{}
	for _, p := range r.db.products {
		if p.StockQuantity < minStock {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r fakeProducts) IncrementStock(ctx context.Context, ids []uuid.UUID, by int) (int64, error) {
	if err := r.db.write("Products.IncrementStock"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok {
			p.StockQuantity += by
			r.db.products[id] = p
			n++
		}
	}
	return n, nil
}

func (r fakeProducts) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	p, ok := r.db.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if p.StockQuantity < quantity {
		return repository.ErrInsufficientStock
	}
	if err := r.db.write("Products.DecrementStock"); err != nil {
		return err
	}
	p.StockQuantity -= quantity
	r.db.products[id] = p
	return nil
}

type fakeOrders struct{ db *memDB }

func (r fakeOrders) Create(ctx context.Context, o *domain.Order) error {
	if err := r.db.write("Orders.Create"); err != nil {
		return err
	}
	stored := *o
	stored.Items = nil
	stored.Customer = nil
	r.db.orders[o.ID] = stored
	return nil
}

func (r fakeOrders) AddItem(ctx context.Context, item *domain.OrderItem) error {
	if err := r.db.write("Orders.AddItem"); err != nil {
		return err
	}
	r.db.items = append(r.db.items, *item)
	return nil
}

func (r fakeOrders) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	if err := r.db.write("Orders.UpdateTotal"); err != nil {
		return err
	}
	o, ok := r.db.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.TotalAmount = total
	r.db.orders[id] = o
	return nil
}

func (r fakeOrders) hydrate(o domain.Order) *domain.Order {
	c := r.db.customers[o.CustomerID]
	o.Customer = &c
	o.Items = []domain.OrderItem{}
	for _, item := range r.db.items {
		if item.OrderID == o.ID {
			item.ProductName = r.db.products[item.ProductID].Name
			o.Items = append(o.Items, item)
		}
	}
	return &o
}

func (r fakeOrders) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := r.db.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return r.hydrate(o), nil
}

func (r fakeOrders) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	out := []*domain.Order{}
	for _, o := range r.db.orders {
		out = append(out, r.hydrate(o))
	}
	return out, len(out), nil
}

func (r fakeOrders) ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	if err := r.db.hit("Orders.ListSince"); err != nil {
		return nil, err
	}
	out := []*domain.Order{}
	for _, o := range r.db.orders {
		if !o.OrderDate.Before(since) {
			out = append(out, r.hydrate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (r fakeOrders) Count(ctx context.Context) (int, error) {
	return len(r.db.orders), nil
}

func (r fakeOrders) Revenue(ctx context.Context) (decimal.Decimal, error) {
	if err := r.db.hit("Orders.Revenue"); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range r.db.orders {
		if o.Status != domain.OrderStatusCancelled {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}
