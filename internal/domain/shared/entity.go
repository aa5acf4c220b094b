package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity every stored record carries.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
}

// NewBaseEntity assigns a fresh random ID stamped with the current time.
func NewBaseEntity() BaseEntity {
	return BaseEntity{ID: uuid.New(), CreatedAt: time.Now()}
}
