package branch

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Branch status constants
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
)

// Domain errors
var (
	ErrEmptyID       = errors.New("branch id cannot be empty")
	ErrEmptyName     = errors.New("branch name cannot be empty")
	ErrInvalidStatus = errors.New("status must be 'active', 'inactive', or 'maintenance'")
	ErrInvalidRating = errors.New("rating average must be between 0 and 5")
)

// Address is the postal location of a branch.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

// String formats the address on one line, skipping empty parts.
func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Street, a.City, a.Region, a.PostalCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Stats are aggregate roster counters maintained by the branch-data source.
type Stats struct {
	TotalMembers  int `json:"totalMembers"`
	ActiveMembers int `json:"activeMembers"`
	TotalTrainers int `json:"totalTrainers"`
}

// Rating is review metadata for a branch.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Branch is one gym location.
type Branch struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     Address `json:"address"`
	Phone       string  `json:"phone,omitempty"`
	Description string  `json:"description,omitempty"` // markdown
	Status      string  `json:"status"`
	Stats       Stats   `json:"stats"`
	Rating      Rating  `json:"rating"`
}

// Validate checks if the Branch has valid data.
// PRE: Branch struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (b *Branch) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if len(b.Name) > MaxNameLength {
		return errors.New("branch name cannot exceed 100 characters")
	}
	switch b.Status {
	case StatusActive, StatusInactive, StatusMaintenance:
	default:
		return ErrInvalidStatus
	}
	if b.Rating.Average < 0 || b.Rating.Average > 5 {
		return ErrInvalidRating
	}
	return nil
}

// IsActive returns true if the branch is open for business.
func (b *Branch) IsActive() bool {
	return b.Status == StatusActive
}
