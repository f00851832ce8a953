package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestCreateCustomer(t *testing.T) {
	db := newMemDB()
	svc := NewCustomerService(newFakeStore(db))

	customer, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+44 20 7946 0000",
	})
	if err != nil {
		t.Fatalf("CreateCustomer returned error: %v", err)
	}

	if customer.FirstName != "Ada" {
		t.Errorf("Expected trimmed first name, got %q", customer.FirstName)
	}
	if customer.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
	if _, ok := db.customers[customer.ID]; !ok {
		t.Error("Customer was not persisted")
	}
}

func TestCreateCustomerRejectsDuplicateEmail(t *testing.T) {
	db := newMemDB()
	db.addCustomer("Ada", "Lovelace", "ada@example.com")
	svc := NewCustomerService(newFakeStore(db))

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "ada@example.com",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if len(db.customers) != 1 {
		t.Errorf("Expected 1 customer, got %d", len(db.customers))
	}
}

func TestCreateCustomerValidatesFields(t *testing.T) {
	tests := []struct {
		name  string
		input CreateCustomerInput
		field string
	}{
		{"missing first name", CreateCustomerInput{LastName: "L", Email: "a@b.co"}, "first_name"},
		{"missing last name", CreateCustomerInput{FirstName: "F", Email: "a@b.co"}, "last_name"},
		{"bad email", CreateCustomerInput{FirstName: "F", LastName: "L", Email: "nope"}, "email"},
		{"long phone", CreateCustomerInput{FirstName: "F", LastName: "L", Email: "a@b.co", Phone: strings.Repeat("1", 21)}, "phone"},
		{"long first name", CreateCustomerInput{FirstName: strings.Repeat("x", 101), LastName: "L", Email: "a@b.co"}, "first_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMemDB()
			_, err := NewCustomerService(newFakeStore(db)).CreateCustomer(context.Background(), tt.input)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Expected message to name %s, got %q", tt.field, err.Error())
			}
			if db.writes != 0 {
				t.Errorf("Expected zero writes, got %d", db.writes)
			}
		})
	}
}

func TestGetCustomerNotFound(t *testing.T) {
	_, err := NewCustomerService(newFakeStore(newMemDB())).GetCustomer(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestCreateProduct(t *testing.T) {
	db := newMemDB()
	svc := NewProductService(newFakeStore(db))
	unavailable := false

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Widget",
		Price:         decimal.RequireFromString("19.99"),
		StockQuantity: 3,
		IsAvailable:   &unavailable,
	})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if product.IsAvailable {
		t.Error("Expected IsAvailable false")
	}
	if _, ok := db.products[product.ID]; !ok {
		t.Error("Product was not persisted")
	}

	product, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Gadget",
		Price: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if !product.IsAvailable {
		t.Error("Expected IsAvailable to default to true")
	}
}

func TestCreateProductRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing name", CreateProductInput{Price: decimal.RequireFromString("1.00")}},
		{"negative price", CreateProductInput{Name: "W", Price: decimal.RequireFromString("-0.01")}},
		{"three decimals", CreateProductInput{Name: "W", Price: decimal.RequireFromString("1.005")}},
		{"too large", CreateProductInput{Name: "W", Price: decimal.RequireFromString("100000000")}},
		{"negative stock", CreateProductInput{Name: "W", Price: decimal.RequireFromString("1.00"), StockQuantity: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMemDB()
			_, err := NewProductService(newFakeStore(db)).CreateProduct(context.Background(), tt.input)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if len(db.products) != 0 {
				t.Error("Expected no product persisted")
			}
		})
	}
}

func TestCreateProductStoreFailure(t *testing.T) {
	db := newMemDB()
	db.failOn("Products.Create", 1)

	_, err := NewProductService(newFakeStore(db)).CreateProduct(context.Background(), CreateProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("1.00"),
	})
	if !errors.Is(err, ErrStoreFailure) {
		t.Errorf("Expected store failure, got %v", err)
	}
}

// Feature: crm-backend, Property 4: Created products keep their attributes
func TestProperty_CreatedProductsKeepAttributes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("price and stock are stored as given", prop.ForAll(
		func(name string, cents int64, stock int) bool {
			db := newMemDB()
			price := decimal.New(cents, -2)

			product, err := NewProductService(newFakeStore(db)).CreateProduct(context.Background(), CreateProductInput{
				Name:          name,
				Price:         price,
				StockQuantity: stock,
			})
			if err != nil {
				t.Logf("FAIL: CreateProduct returned error: %v", err)
				return false
			}

			stored := db.products[product.ID]
			return stored.Name == name && stored.Price.Equal(price) && stored.StockQuantity == stock
		},
		gen.RegexMatch(`[A-Z][a-z]{2,20}`),
		gen.Int64Range(0, 9999999999),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
