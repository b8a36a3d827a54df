package item

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"geostrat/internal/api"
)

const (
	nameMinLen        = 3
	nameMaxLen        = 100
	descriptionMinLen = 10
	descriptionMaxLen = 1000
	creatorMinLen     = 2
	creatorMaxLen     = 50
)

// ValidatePayload trims the payload fields and checks them against the item
// constraints. The same rules apply on create and update. Every violated field
// is reported; a payload with any violation is rejected as a whole.
func ValidatePayload(p Payload, mode CreatorMode) (Payload, *api.ValidationError) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.CreatedBy = strings.TrimSpace(p.CreatedBy)

	v := api.NewValidationError()

	switch n := utf8.RuneCountInString(p.Name); {
	case n == 0:
		v.Add("name", "name is required")
	case n < nameMinLen || n > nameMaxLen:
		v.Add("name", fmt.Sprintf("name must be between %d and %d characters", nameMinLen, nameMaxLen))
	}

	switch n := utf8.RuneCountInString(p.Description); {
	case n == 0:
		v.Add("description", "description is required")
	case n < descriptionMinLen || n > descriptionMaxLen:
		v.Add("description", fmt.Sprintf("description must be between %d and %d characters", descriptionMinLen, descriptionMaxLen))
	}

	switch n := utf8.RuneCountInString(p.CreatedBy); {
	case n == 0:
		v.Add("created_by", "created_by is required")
	case mode == CreatorModeName && (n < creatorMinLen || n > creatorMaxLen):
		v.Add("created_by", fmt.Sprintf("created_by must be between %d and %d characters", creatorMinLen, creatorMaxLen))
	}

	if v.HasViolations() {
		return Payload{}, v
	}
	return p, nil
}
