package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a CRM customer
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name" validate:"required,max=100"`
	LastName  string    `json:"last_name" db:"last_name" validate:"required,max=100"`
	Email     string    `json:"email" db:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone" db:"phone" validate:"max=20"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
