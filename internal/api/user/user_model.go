package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Users are created by the seed program and, in
// referential creator mode, attribute strategic items.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
