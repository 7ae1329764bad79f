package entity

import (
	"strings"
	"unicode/utf8"
)

// MinInstructionsLength is the minimum number of characters, after trimming
// surrounding whitespace, a recipe's instructions must have.
const MinInstructionsLength = 50

// Recipe belongs to at most one user. UserID is nil for unowned recipes.
type Recipe struct {
	ID                int64
	Title             string
	Instructions      string
	MinutesToComplete int
	UserID            *int64
	User              *User
}

// NewRecipe validates the fields and links the recipe to owner when non-nil.
func NewRecipe(title, instructions string, minutesToComplete int, owner *User) (*Recipe, error) {
	if strings.TrimSpace(title) == "" {
		return nil, NewValidationError("title", "Title is required.")
	}
	if err := ValidateInstructions(instructions); err != nil {
		return nil, err
	}
	r := &Recipe{
		Title:             title,
		Instructions:      instructions,
		MinutesToComplete: minutesToComplete,
	}
	if owner != nil {
		id := owner.ID
		r.UserID = &id
		r.User = owner
	}
	return r, nil
}

// ValidateInstructions enforces MinInstructionsLength.
func ValidateInstructions(instructions string) error {
	if utf8.RuneCountInString(strings.TrimSpace(instructions)) < MinInstructionsLength {
		return NewValidationError("instructions", "Instructions must be at least 50 characters long.")
	}
	return nil
}

// OwnedBy reports whether the recipe belongs to userID.
func (r *Recipe) OwnedBy(userID int64) bool {
	return r.UserID != nil && *r.UserID == userID
}
