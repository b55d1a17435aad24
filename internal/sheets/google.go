package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// ErrMissingCredentials means no service account file was configured.
var ErrMissingCredentials = errors.New("google sheets: service account credentials path not set")

type GoogleOptions struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
	// ClientOptions replace the credentials file when set.
	ClientOptions []option.ClientOption
}

// GoogleSink appends rows to a Google Sheets worksheet.
type GoogleSink struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	sheetName     string
}

func NewGoogleSink(ctx context.Context, opts GoogleOptions) (*GoogleSink, error) {
	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 {
		if opts.CredentialsPath == "" {
			return nil, ErrMissingCredentials
		}
		clientOpts = []option.ClientOption{
			option.WithCredentialsFile(opts.CredentialsPath),
			option.WithScopes(gsheets.SpreadsheetsScope),
		}
	}
	if opts.SpreadsheetID == "" {
		return nil, errors.New("google sheets: spreadsheet id not set")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Sheet1"
	}
	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	return &GoogleSink{values: svc.Spreadsheets.Values, spreadsheetID: opts.SpreadsheetID, sheetName: opts.SheetName}, nil
}

func (s *GoogleSink) AppendRow(ctx context.Context, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err := s.values.Append(s.spreadsheetID, s.sheetName, &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("google sheets append: %w", err)
	}
	return nil
}
