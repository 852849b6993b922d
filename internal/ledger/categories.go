package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"expense_tracker_bot/internal/retry"

	"github.com/rs/zerolog/log"
)

const categoryColumn = "E"

var (
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
)

// Categories returns the distinct category names found in column E, sorted.
// A cell may hold a comma-separated list; every element counts.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	cells, err := s.categoryCells(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for i, cell := range cells {
		if i == 0 {
			continue // header
		}
		for _, name := range SplitCategories(cell) {
			if !seen[name] {
				seen[name] = true
				categories = append(categories, name)
			}
		}
	}

	sort.Strings(categories)
	return categories, nil
}

// AddCategory appends a category to the registry. The duplicate check is
// case-insensitive.
func (s *Store) AddCategory(ctx context.Context, name string) error {
	cells, err := s.categoryCells(ctx)
	if err != nil {
		return err
	}

	for _, cell := range cells {
		for _, existing := range SplitCategories(cell) {
			if strings.EqualFold(existing, name) {
				return ErrCategoryExists
			}
		}
	}

	row := countNonEmpty(cells) + 1
	if err := s.updateCategoryCell(ctx, row, name); err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}

	log.Info().Str("category", name).Int("row", row).Msg("Category added")
	return nil
}

// RemoveCategory removes an exact category name from whichever cell holds it.
// The rest of the cell's list is preserved.
func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	cells, err := s.categoryCells(ctx)
	if err != nil {
		return err
	}

	for i, cell := range cells {
		updated, found := removeCategoryFromCell(cell, name)
		if !found {
			continue
		}
		if err := s.updateCategoryCell(ctx, i+1, updated); err != nil {
			return fmt.Errorf("failed to remove category: %w", err)
		}
		log.Info().Str("category", name).Int("row", i+1).Msg("Category removed")
		return nil
	}

	return ErrCategoryNotFound
}

// RenameCategory replaces an exact category name in place.
func (s *Store) RenameCategory(ctx context.Context, oldName, newName string) error {
	cells, err := s.categoryCells(ctx)
	if err != nil {
		return err
	}

	for i, cell := range cells {
		updated, found := renameCategoryInCell(cell, oldName, newName)
		if !found {
			continue
		}
		if err := s.updateCategoryCell(ctx, i+1, updated); err != nil {
			return fmt.Errorf("failed to rename category: %w", err)
		}
		log.Info().
			Str("old", oldName).
			Str("new", newName).
			Int("row", i+1).
			Msg("Category renamed")
		return nil
	}

	return ErrCategoryNotFound
}

func (s *Store) categoryCells(ctx context.Context) ([]string, error) {
	cells, err := retry.WithRetry(ctx, s.resilience.SheetRead, func(ctx context.Context) ([]string, error) {
		return s.client.ColumnValues(ctx, s.spreadsheetID, s.sheetName, categoryColumn)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read category column: %w", err)
	}
	return cells, nil
}

func (s *Store) updateCategoryCell(ctx context.Context, row int, value string) error {
	_, err := retry.WithRetry(ctx, s.resilience.SheetWrite, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.UpdateCell(ctx, s.spreadsheetID, s.sheetName, categoryColumn, row, value)
	})
	return err
}

// SplitCategories breaks a comma-separated cell into trimmed names.
func SplitCategories(cell string) []string {
	var names []string
	for _, part := range strings.Split(cell, ",") {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// removeCategoryFromCell drops an exact name from a cell's list. The second
// return reports whether the name was present.
func removeCategoryFromCell(cell, name string) (string, bool) {
	names := SplitCategories(cell)
	var kept []string
	found := false
	for _, existing := range names {
		if existing == name && !found {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return cell, false
	}
	return strings.Join(kept, ", "), true
}

// renameCategoryInCell replaces an exact name within a cell's list.
func renameCategoryInCell(cell, oldName, newName string) (string, bool) {
	names := SplitCategories(cell)
	found := false
	for i, existing := range names {
		if existing == oldName {
			names[i] = newName
			found = true
		}
	}
	if !found {
		return cell, false
	}
	return strings.Join(names, ", "), true
}

func countNonEmpty(cells []string) int {
	count := 0
	for _, cell := range cells {
		if cell != "" {
			count++
		}
	}
	return count
}
