package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE postgres reports for duplicate keys.
const uniqueViolation = "23505"

// DBTX is the query surface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store groups the repositories and runs them inside scoped transactions.
type Store interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository

	// WithinTx runs fn against a transaction-bound Store. The transaction is
	// committed when fn returns nil and rolled back otherwise, including on
	// panic. Calls on a Store that is already transaction-bound reuse it.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *sql.DB
	q  DBTX
}

// NewStore creates a Store over a connection pool
func NewStore(db *sql.DB) Store {
	return &store{db: db, q: db}
}

func (s *store) Customers() CustomerRepository {
	return NewCustomerRepository(s.q)
}

func (s *store) Products() ProductRepository {
	return NewProductRepository(s.q)
}

func (s *store) Orders() OrderRepository {
	return NewOrderRepository(s.q)
}

func (s *store) WithinTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&store{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
	}
	return false
}

// idArray encodes ids as one text[] parameter, matched in SQL with
// "= ANY($n::text[]::uuid[])". A single array keeps large id sets clear of the
// 65535 bind parameter limit.
func idArray(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// pageOffset normalises page/pageSize and returns the row offset.
func pageOffset(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageSize, (page - 1) * pageSize
}
