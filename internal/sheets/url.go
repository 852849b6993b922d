package sheets

import (
	"fmt"
	"strings"
)

// SpreadsheetIDFromURL extracts the spreadsheet ID from a full Google Sheets
// URL: the path segment between "/d/" and the next "/" (usually "/edit").
// A bare ID is returned unchanged, so config may hold either form.
func SpreadsheetIDFromURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("spreadsheet ID is empty")
	}

	if !strings.Contains(s, "/") {
		return s, nil
	}

	const marker = "/d/"
	i := strings.Index(s, marker)
	if i < 0 {
		return "", fmt.Errorf("no /d/ segment in spreadsheet URL %q", s)
	}

	id := s[i+len(marker):]
	if j := strings.IndexAny(id, "/?#"); j >= 0 {
		id = id[:j]
	}
	if id == "" {
		return "", fmt.Errorf("empty spreadsheet ID in URL %q", s)
	}

	return id, nil
}
