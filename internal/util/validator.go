package util

import (
	"fmt"
	"time"
)

// ValidateAmount checks that a monetary amount is strictly positive and
// under the sanity cap.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}
	if amount >= 10000000 {
		return fmt.Errorf("amount too large, got %f", amount)
	}
	return nil
}

// ParseDate parses a date accepting RFC3339, date-time and plain date
// forms, the formats clients actually send.
func ParseDate(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ValidateRole checks a group-member role name.
func ValidateRole(role string) error {
	switch role {
	case "owner", "admin", "member", "viewer":
		return nil
	}
	return fmt.Errorf("invalid role %q", role)
}
