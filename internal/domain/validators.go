package domain

import (
	"fmt"
	"strings"
)

// ValidatePlayer checks an administratively registered player.
func ValidatePlayer(p Player) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.Position) == "" {
		return fmt.Errorf("position is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must be non-negative, got %g", p.Price)
	}
	counters := []struct {
		name  string
		value int
	}{
		{"goals_scored", p.GoalsScored},
		{"assists", p.Assists},
		{"clean_sheets", p.CleanSheets},
	}
	for _, c := range counters {
		if c.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", c.name, c.value)
		}
	}
	return nil
}

// FirstMissing returns the name of the first nil field, in the given order.
func FirstMissing(fields []string, values ...*string) (string, bool) {
	for i, v := range values {
		if v == nil && i < len(fields) {
			return fields[i], true
		}
	}
	return "", false
}
