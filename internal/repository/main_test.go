package repository_test

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"crm-backend/internal/database"
	"crm-backend/internal/domain"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context) error, error) {
	var (
		dbName = "crm"
		dbPwd  = "password"
		dbUser = "user"
	)

	ctx := context.Background()
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(testDB, zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}

	if code != 0 {
		log.Fatalf("tests failed with exit code %d", code)
	}
}

// resetDB empties every table; tests share one container.
func resetDB(t *testing.T) {
	t.Helper()
	if _, err := testDB.Exec(`TRUNCATE order_items, orders, products, customers`); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

func newCustomer(t *testing.T, email string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := repository.NewCustomerRepository(testDB).Create(context.Background(), c); err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	return c
}

func newProduct(t *testing.T, name, price string, stock int) *domain.Product {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	p := &domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repository.NewProductRepository(testDB).Create(context.Background(), p); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return p
}
