package sheets

import "testing"

func TestSpreadsheetIDFromFullURL(t *testing.T) {
	url := "https://docs.google.com/spreadsheets/d/1QgYUWbeT5laQiwA5qEw76K_tsKZX721vTzXU91AXg_E/edit#gid=0"

	id, err := SpreadsheetIDFromURL(url)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != "1QgYUWbeT5laQiwA5qEw76K_tsKZX721vTzXU91AXg_E" {
		t.Errorf("Unexpected ID %q", id)
	}
}

func TestSpreadsheetIDFromURLWithoutEditSuffix(t *testing.T) {
	url := "https://docs.google.com/spreadsheets/d/1QgYUWbeT5laQiwA5qEw76K_tsKZX721vTzXU91AXg_E"

	id, err := SpreadsheetIDFromURL(url)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != "1QgYUWbeT5laQiwA5qEw76K_tsKZX721vTzXU91AXg_E" {
		t.Errorf("Unexpected ID %q", id)
	}
}

func TestSpreadsheetIDFromURLWithQuery(t *testing.T) {
	url := "https://docs.google.com/spreadsheets/d/abc123?usp=sharing"

	id, err := SpreadsheetIDFromURL(url)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != "abc123" {
		t.Errorf("Expected abc123, got %q", id)
	}
}

func TestSpreadsheetIDPassThrough(t *testing.T) {
	id, err := SpreadsheetIDFromURL("  1QgYUWbeT5laQiwA5qEw76K_tsKZX721vTzXU91AXg_E ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != "1QgYUWbeT5laQiwA5qEw76K_tsKZX721vTzXU91AXg_E" {
		t.Errorf("Unexpected ID %q", id)
	}
}

func TestSpreadsheetIDFromURLErrors(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"https://docs.google.com/spreadsheets/abc123/edit",
		"https://docs.google.com/spreadsheets/d//edit",
	}

	for _, input := range cases {
		if _, err := SpreadsheetIDFromURL(input); err == nil {
			t.Errorf("Expected error for %q, got nil", input)
		}
	}
}
