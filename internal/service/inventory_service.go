package service

import (
	"context"
	"fmt"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultMinStock    = 10
	DefaultIncrementBy = 50
)

// ReplenishResult describes the outcome of a replenishment batch
type ReplenishResult struct {
	Success      bool
	Message      string
	UpdatedCount int
}

// InventoryService defines the interface for stock maintenance
type InventoryService interface {
	// ReplenishLowStock adds incrementBy to the stock of every product whose
	// stock is strictly below minStock, as one atomic batch.
	ReplenishLowStock(ctx context.Context, minStock, incrementBy int) (ReplenishResult, error)
}

type inventoryService struct {
	store repository.Store
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(store repository.Store) InventoryService {
	return &inventoryService{store: store}
}

func (s *inventoryService) ReplenishLowStock(ctx context.Context, minStock, incrementBy int) (ReplenishResult, error) {
	if minStock < 0 {
		return ReplenishResult{Message: "min stock must not be negative"}, invalid("min stock must not be negative")
	}
	if incrementBy <= 0 {
		return ReplenishResult{Message: "increment must be positive"}, invalid("increment must be positive")
	}

	var updated int
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		low, err := tx.Products().LockBelowStock(ctx, minStock)
		if err != nil {
			return storeFailure("failed to select low-stock products", err)
		}
		if len(low) == 0 {
			return nil
		}

		n, err := tx.Products().IncrementStock(ctx, productIDs(low), incrementBy)
		if err != nil {
			return storeFailure("failed to increment stock", err)
		}
		updated = int(n)
		return nil
	})
	if err != nil {
		err = passOrWrap("failed to replenish stock", err)
		return ReplenishResult{Message: Message(err)}, err
	}

	if updated == 0 {
		return ReplenishResult{Success: true, Message: "no low-stock products found"}, nil
	}
	return ReplenishResult{
		Success:      true,
		Message:      fmt.Sprintf("%d low-stock products updated", updated),
		UpdatedCount: updated,
	}, nil
}

func productIDs(products []*domain.Product) []uuid.UUID {
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
