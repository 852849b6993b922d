package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"expense_tracker_bot/internal/ledger"
)

// Period selects the reporting window relative to "now".
type Period int

const (
	Day Period = iota
	Week
	Month
)

func (p Period) String() string {
	switch p {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	}
	return "unknown"
}

// Options narrows and formats a summary.
type Options struct {
	// Category filters rows to those carrying this category (case-insensitive,
	// matched against each name in the row's comma-separated list).
	Category string
	// Top keeps only the N most expensive entries in the listing. The total
	// still covers every matching entry.
	Top int
	// Divider is the currency symbol appended to amounts.
	Divider string
}

// Summarize builds the spending report for one period. The week runs Monday
// through today; the month is the calendar month of now.
func Summarize(expenses []ledger.Expense, period Period, opts Options, now time.Time) string {
	today := dateOnly(now)

	var matched []ledger.Expense
	total := 0.0
	for _, expense := range expenses {
		if !inPeriod(dateOnly(expense.Date), period, today) {
			continue
		}
		if opts.Category != "" && !hasCategory(expense.Category, opts.Category) {
			continue
		}
		matched = append(matched, expense)
		total += expense.Price
	}

	suffix := ""
	if opts.Category != "" {
		suffix = fmt.Sprintf(" in %s", opts.Category)
	}

	if len(matched) == 0 {
		return fmt.Sprintf("No spendings recorded for this %s%s.", period, suffix)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Price > matched[j].Price
	})

	listed := matched
	if opts.Top > 0 && opts.Top < len(listed) {
		listed = listed[:opts.Top]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Spending for %s%s:\n", period, suffix)
	for _, expense := range listed {
		category := expense.Category
		if category == "" {
			category = "N/A"
		}
		fmt.Fprintf(&sb, "- %s (%s): %.2f%s (%s)\n",
			expense.Item, category, expense.Price, opts.Divider,
			dateDisplay(dateOnly(expense.Date), period, today))
	}
	fmt.Fprintf(&sb, "\nTotal for %s: %.2f%s", period, total, opts.Divider)

	return sb.String()
}

func inPeriod(date time.Time, period Period, today time.Time) bool {
	switch period {
	case Day:
		return date.Equal(today)
	case Week:
		start := startOfWeek(today)
		return !date.Before(start) && !date.After(today)
	case Month:
		return date.Year() == today.Year() && date.Month() == today.Month()
	}
	return false
}

// hasCategory reports whether want appears in a row's category list.
func hasCategory(rowCategory, want string) bool {
	for _, name := range ledger.SplitCategories(rowCategory) {
		if strings.EqualFold(name, want) {
			return true
		}
	}
	return false
}

func dateDisplay(date time.Time, period Period, today time.Time) string {
	if period != Day {
		return date.Format("2006-01-02")
	}
	days := int(today.Sub(date).Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

// startOfWeek returns the Monday of the week containing date.
func startOfWeek(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
