package ledger

import (
	"context"
	"fmt"
	"time"

	"expense_tracker_bot/internal/config"
	"expense_tracker_bot/internal/retry"
	"expense_tracker_bot/internal/sheets"

	"github.com/rs/zerolog/log"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"

	// Column layout: A date, B time, C item, D price, E category.
	// Row 1 is a header. Column E doubles as the category registry.
	// Open-ended so the read never truncates a long-lived ledger.
	readRange = "A:E"
)

// Expense is one parsed ledger row.
type Expense struct {
	Row      int
	Date     time.Time
	Item     string
	Price    float64
	Category string
}

// Store reads and writes the expense ledger kept in a single worksheet tab.
type Store struct {
	client        *sheets.Client
	spreadsheetID string
	sheetName     string
	resilience    config.ResilienceConfig
}

func NewStore(client *sheets.Client, spreadsheetID, sheetName string) *Store {
	return &Store{
		client:        client,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		resilience:    config.DefaultResilienceConfig,
	}
}

// Append records an expense in the first row whose date cell is empty.
func (s *Store) Append(ctx context.Context, item string, price float64, category string) error {
	nextRow, err := s.nextFreeRow(ctx, "A")
	if err != nil {
		return fmt.Errorf("failed to find next free row: %w", err)
	}

	now := time.Now()
	row := []interface{}{
		now.Format(dateLayout),
		now.Format(timeLayout),
		item,
		price,
		category,
	}

	range_ := fmt.Sprintf("%s!A%d:E%d", s.sheetName, nextRow, nextRow)
	_, err = retry.WithRetry(ctx, s.resilience.SheetWrite, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.UpdateRange(ctx, s.spreadsheetID, range_, [][]interface{}{row})
	})
	if err != nil {
		return fmt.Errorf("failed to write expense row: %w", err)
	}

	log.Info().
		Int("row", nextRow).
		Str("item", item).
		Float64("price", price).
		Str("category", category).
		Msg("Expense recorded")

	return nil
}

// All returns every parseable expense row. Malformed rows are skipped with a
// warning so one bad cell never hides the rest of the ledger.
func (s *Store) All(ctx context.Context) ([]Expense, error) {
	range_ := fmt.Sprintf("%s!%s", s.sheetName, readRange)
	rows, err := retry.WithRetry(ctx, s.resilience.SheetRead, func(ctx context.Context) ([][]interface{}, error) {
		return s.client.ReadRange(ctx, s.spreadsheetID, range_)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	expenses := parseLedgerRows(rows)

	log.Debug().
		Int("total_rows", len(rows)).
		Int("parsed_expenses", len(expenses)).
		Msg("Parsed ledger rows")

	return expenses, nil
}

// nextFreeRow counts non-empty cells in a column and returns the row after
// the last one. Gaps are overwritten, matching how the ledger always grew.
func (s *Store) nextFreeRow(ctx context.Context, column string) (int, error) {
	values, err := retry.WithRetry(ctx, s.resilience.SheetRead, func(ctx context.Context) ([]string, error) {
		return s.client.ColumnValues(ctx, s.spreadsheetID, s.sheetName, column)
	})
	if err != nil {
		return 0, err
	}

	used := 0
	for _, cell := range values {
		if cell != "" {
			used++
		}
	}
	return used + 1, nil
}
