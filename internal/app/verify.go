package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"expense_tracker_bot/internal/sheets"

	"github.com/rs/zerolog/log"
)

// serviceAccountKey is the subset of the downloaded key file we sanity-check.
type serviceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// Verify runs the setup preflight: the credentials file parses, the
// spreadsheet ID is well-formed, and the worksheet tab can actually be read.
// It stops at the first failure with a message telling the operator which
// manual setup step to revisit.
func Verify(ctx context.Context) error {
	credsFile := GetEnvWithDefault("CREDENTIALS_FILE", "credentials.json")

	data, err := os.ReadFile(credsFile)
	if err != nil {
		return fmt.Errorf("cannot read %s (download the service account JSON key from the cloud console and place it next to the bot): %w", credsFile, err)
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return fmt.Errorf("%s is not valid JSON: %w", credsFile, err)
	}
	if key.Type != "service_account" || key.ClientEmail == "" {
		return fmt.Errorf("%s does not look like a service account key (type=%q)", credsFile, key.Type)
	}

	log.Info().
		Str("client_email", key.ClientEmail).
		Str("project", key.ProjectID).
		Msg("Credentials OK. Share the spreadsheet with this address (Editor access)")

	rawID := os.Getenv("SPREADSHEET_ID")
	if rawID == "" {
		return fmt.Errorf("SPREADSHEET_ID is not set; copy the part of the sheet URL between /d/ and /edit, or paste the whole URL")
	}
	spreadsheetID, err := sheets.SpreadsheetIDFromURL(rawID)
	if err != nil {
		return fmt.Errorf("SPREADSHEET_ID is neither an ID nor a sheet URL: %w", err)
	}
	log.Info().Str("spreadsheet_id", spreadsheetID).Msg("Spreadsheet ID OK")

	sheetName := GetEnvWithDefault("SHEET_NAME", "Expenses")

	client, err := sheets.NewClient(ctx, credsFile)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	if _, err := client.ReadRange(ctx, spreadsheetID, fmt.Sprintf("%s!A1:E1", sheetName)); err != nil {
		return fmt.Errorf("test read of tab %q failed (check the tab name and that the sheet is shared with %s): %w",
			sheetName, key.ClientEmail, err)
	}

	log.Info().
		Str("sheet", sheetName).
		Msg("Setup verified: spreadsheet is reachable and readable")

	return nil
}
