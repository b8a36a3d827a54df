package item

import (
	"time"

	"github.com/google/uuid"
)

// Item is a persisted strategic entity. CreatedAt is assigned by the store at
// creation and never mutated.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Payload is the client-supplied portion of an item, used for create and
// full-replacement update alike.
type Payload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

// CreatorMode selects how created_by is interpreted. One mode per deployment.
type CreatorMode string

const (
	// CreatorModeName treats created_by as a free-text attribution.
	CreatorModeName CreatorMode = "name"
	// CreatorModeUser requires created_by to reference a registered username.
	CreatorModeUser CreatorMode = "user"
)
