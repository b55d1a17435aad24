package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

var excelHeader = []interface{}{"担当者", "評価", "結果"}

// ExcelSink appends rows to a local workbook, creating it on first write.
type ExcelSink struct {
	path  string
	sheet string
	mu    sync.Mutex
}

func NewExcelSink(path, sheet string) (*ExcelSink, error) {
	if path == "" {
		return nil, errors.New("xlsx sink: path not set")
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &ExcelSink{path: path, sheet: sheet}, nil
}

func (s *ExcelSink) AppendRow(ctx context.Context, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("xlsx sink: read rows: %w", err)
	}
	next := len(rows) + 1
	if len(rows) == 0 {
		if err := f.SetSheetRow(s.sheet, "A1", &excelHeader); err != nil {
			return fmt.Errorf("xlsx sink: write header: %w", err)
		}
		next = 2
	}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(s.sheet, cell, &row); err != nil {
		return fmt.Errorf("xlsx sink: write row: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("xlsx sink: save: %w", err)
	}
	return nil
}

// Rows returns the data rows written so far, header excluded.
func (s *ExcelSink) Rows() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("xlsx sink: open: %w", err)
	}
	defer f.Close()
	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx sink: read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func (s *ExcelSink) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f = excelize.NewFile()
		if s.sheet != "Sheet1" {
			if err := f.SetSheetName("Sheet1", s.sheet); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("xlsx sink: rename sheet: %w", err)
			}
		}
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("xlsx sink: open: %w", err)
	}
	if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx < 0 {
		if _, err := f.NewSheet(s.sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("xlsx sink: add sheet: %w", err)
		}
	}
	return f, nil
}
