// Package sheets mirrors finalized bills into a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/tiffinwala/tiffin/internal/config"
)

// Repository is the slice of the Sheets API the mirror needs.
type Repository interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

var errEmptyRange = errors.New("sheet range must not be empty")

// SpreadsheetClient talks to one spreadsheet through the Sheets v4 API.
type SpreadsheetClient struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	logger        *zap.Logger
}

// NewSpreadsheetClient authenticates with the service account file in cfg.
func NewSpreadsheetClient(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*SpreadsheetClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled() {
		return nil, errors.New("sheets mirror is not configured")
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}

	return &SpreadsheetClient{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends one row below the last non-empty row of sheetRange.
func (c *SpreadsheetClient) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}

	body := &sheetsapi.ValueRange{Values: [][]interface{}{values}}
	_, err := c.values.Append(c.spreadsheetID, sheetRange, body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", sheetRange, err)
	}

	c.logger.Debug("row appended", zap.String("range", sheetRange), zap.Int("columns", len(values)))
	return nil
}

// ReadRange returns the raw cell values of sheetRange.
func (c *SpreadsheetClient) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, errEmptyRange
	}

	resp, err := c.values.Get(c.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}
