package report

import (
	"strings"
	"testing"
	"time"

	"expense_tracker_bot/internal/ledger"
)

var now = time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC) // a Friday

func expense(date time.Time, item string, price float64, category string) ledger.Expense {
	return ledger.Expense{Date: date, Item: item, Price: price, Category: category}
}

func TestSummarizeDay(t *testing.T) {
	expenses := []ledger.Expense{
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "Coffee", 4.5, "Food"),
		expense(time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), "Dinner", 30, "Food"),
	}

	got := Summarize(expenses, Day, Options{Divider: "$"}, now)

	if !strings.Contains(got, "Spending for day:") {
		t.Errorf("Missing header in %q", got)
	}
	if !strings.Contains(got, "Coffee (Food): 4.50$ (0 days ago)") {
		t.Errorf("Missing coffee line in %q", got)
	}
	if strings.Contains(got, "Dinner") {
		t.Errorf("Yesterday's dinner should be excluded: %q", got)
	}
	if !strings.Contains(got, "Total for day: 4.50$") {
		t.Errorf("Wrong total in %q", got)
	}
}

func TestSummarizeWeekStartsMonday(t *testing.T) {
	expenses := []ledger.Expense{
		// Monday of the same week
		expense(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), "Groceries", 50, ""),
		// Sunday before
		expense(time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), "Cinema", 15, ""),
	}

	got := Summarize(expenses, Week, Options{Divider: "$"}, now)

	if !strings.Contains(got, "Groceries (N/A): 50.00$ (2026-08-24)") {
		t.Errorf("Monday expense missing in %q", got)
	}
	if strings.Contains(got, "Cinema") {
		t.Errorf("Previous week's expense should be excluded: %q", got)
	}
}

func TestSummarizeMonth(t *testing.T) {
	expenses := []ledger.Expense{
		expense(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "Rent", 900, "Housing"),
		expense(time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC), "Rent", 900, "Housing"),
	}

	got := Summarize(expenses, Month, Options{Divider: "$"}, now)

	if !strings.Contains(got, "Total for month: 900.00$") {
		t.Errorf("Expected only August rent in total: %q", got)
	}
}

func TestSummarizeCategoryFilter(t *testing.T) {
	expenses := []ledger.Expense{
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "Coffee", 4.5, "Food, Treats"),
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "Bus", 2, "Transport"),
	}

	got := Summarize(expenses, Day, Options{Category: "treats", Divider: "$"}, now)

	if !strings.Contains(got, "Spending for day in treats:") {
		t.Errorf("Missing filtered header in %q", got)
	}
	if !strings.Contains(got, "Coffee") {
		t.Errorf("Coffee should match via its second category: %q", got)
	}
	if strings.Contains(got, "Bus") {
		t.Errorf("Bus should be filtered out: %q", got)
	}
}

func TestSummarizeTopCutKeepsFullTotal(t *testing.T) {
	expenses := []ledger.Expense{
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "A", 10, ""),
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "B", 20, ""),
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "C", 30, ""),
	}

	got := Summarize(expenses, Day, Options{Top: 2, Divider: "$"}, now)

	if strings.Contains(got, "- A") {
		t.Errorf("Cheapest entry should be cut from listing: %q", got)
	}
	if !strings.Contains(got, "- C") || !strings.Contains(got, "- B") {
		t.Errorf("Top entries missing: %q", got)
	}
	if !strings.Contains(got, "Total for day: 60.00$") {
		t.Errorf("Total must cover all matched entries: %q", got)
	}
}

func TestSummarizeSortedByPriceDescending(t *testing.T) {
	expenses := []ledger.Expense{
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "Cheap", 1, ""),
		expense(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "Pricey", 99, ""),
	}

	got := Summarize(expenses, Day, Options{Divider: "$"}, now)

	if strings.Index(got, "Pricey") > strings.Index(got, "Cheap") {
		t.Errorf("Expected Pricey before Cheap: %q", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, Week, Options{Divider: "$"}, now)
	if got != "No spendings recorded for this week." {
		t.Errorf("Unexpected empty message %q", got)
	}

	got = Summarize(nil, Week, Options{Category: "Food", Divider: "$"}, now)
	if got != "No spendings recorded for this week in Food." {
		t.Errorf("Unexpected empty message %q", got)
	}
}

func TestStartOfWeek(t *testing.T) {
	// Sunday belongs to the week started the previous Monday
	sunday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	monday := startOfWeek(sunday)
	if monday.Weekday() != time.Monday || monday.Day() != 24 {
		t.Errorf("Expected Monday the 24th, got %v", monday)
	}

	if got := startOfWeek(monday); !got.Equal(monday) {
		t.Errorf("Monday should be its own week start, got %v", got)
	}
}
