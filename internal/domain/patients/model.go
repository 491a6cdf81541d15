// Package patients manages patient records referenced by orders.
package patients

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the referenced patient does not exist.
var ErrNotFound = errors.New("patient not found")

// ErrValidation marks request errors the caller can correct.
var ErrValidation = errors.New("invalid request")

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
