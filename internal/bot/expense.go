package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseExpense splits an "item<divider>price" message into its parts.
// Exactly one divider must appear, the item must be non-empty, and the
// price must parse as a number.
func ParseExpense(text, divider string) (string, float64, error) {
	parts := strings.Split(text, divider)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("expected exactly one %q divider", divider)
	}

	item := strings.TrimSpace(parts[0])
	if item == "" {
		return "", 0, fmt.Errorf("missing item name")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid price %q: %w", parts[1], err)
	}

	return item, price, nil
}
