package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// parseLedgerRows turns a full sheet read into expenses, skipping the header
// row and anything that fails to parse. Row numbers are 1-based sheet rows.
func parseLedgerRows(rows [][]interface{}) []Expense {
	var expenses []Expense
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		expense, ok := parseExpenseRow(row, i+1)
		if ok {
			expenses = append(expenses, expense)
		}
	}
	return expenses
}

// parseExpenseRow turns a raw sheet row into an Expense. Returns false for
// rows that are too short or fail to parse.
func parseExpenseRow(row []interface{}, rowNum int) (Expense, bool) {
	if len(row) < 5 {
		log.Debug().
			Int("row", rowNum).
			Int("columns", len(row)).
			Msg("Skipping row with insufficient columns")
		return Expense{}, false
	}

	dateStr := strings.TrimSpace(cellString(row, 0))
	item := strings.TrimSpace(cellString(row, 2))
	priceStr := strings.TrimSpace(cellString(row, 3))
	category := strings.TrimSpace(cellString(row, 4))

	if item == "" {
		log.Debug().Int("row", rowNum).Msg("Skipping row with empty item")
		return Expense{}, false
	}

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		log.Warn().
			Int("row", rowNum).
			Str("date", dateStr).
			Msg("Skipping row with invalid date")
		return Expense{}, false
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		log.Warn().
			Int("row", rowNum).
			Str("price", priceStr).
			Msg("Skipping row with invalid price")
		return Expense{}, false
	}

	return Expense{
		Row:      rowNum,
		Date:     date,
		Item:     item,
		Price:    price,
		Category: category,
	}, true
}

// cellString safely extracts a string cell from a row at the given index.
func cellString(row []interface{}, index int) string {
	if len(row) > index && row[index] != nil {
		return fmt.Sprintf("%v", row[index])
	}
	return ""
}
