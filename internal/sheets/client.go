package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client struct {
	service *sheets.Service
	email   string
}

// NewClient builds a Sheets client from a service account key file. The
// spreadsheet must be shared with the key's client_email before any call
// succeeds; ServiceAccountEmail exposes that address for the operator.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service: service,
		email:   jwtConfig.Email,
	}, nil
}

// ServiceAccountEmail returns the client_email from the credentials file.
func (c *Client) ServiceAccountEmail() string {
	return c.email
}

func (c *Client) ReadRange(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, range_).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", range_, err)
	}

	return resp.Values, nil
}

// ColumnValues reads a single column top to bottom. Trailing empty cells are
// not returned by the API; gaps inside the column come back as "".
func (c *Client) ColumnValues(ctx context.Context, spreadsheetID, sheetName, column string) ([]string, error) {
	range_ := fmt.Sprintf("%s!%s1:%s", sheetName, column, column)
	rows, err := c.ReadRange(ctx, spreadsheetID, range_)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		cell := ""
		if len(row) > 0 && row[0] != nil {
			cell = fmt.Sprintf("%v", row[0])
		}
		values = append(values, cell)
	}
	return values, nil
}

func (c *Client) AppendRows(ctx context.Context, spreadsheetID, range_ string, rows [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: rows,
	}

	_, err := c.service.Spreadsheets.Values.Append(spreadsheetID, range_, valueRange).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}

	return nil
}

func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, range_, valueRange).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", range_, err)
	}

	return nil
}

// UpdateCell writes a single cell, addressed by column letter and 1-based row.
func (c *Client) UpdateCell(ctx context.Context, spreadsheetID, sheetName, column string, row int, value interface{}) error {
	cellRange := fmt.Sprintf("%s!%s%d", sheetName, column, row)
	return c.UpdateRange(ctx, spreadsheetID, cellRange, [][]interface{}{{value}})
}
