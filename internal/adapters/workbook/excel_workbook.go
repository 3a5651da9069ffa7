package workbook

import (
	"bytes"
	"fmt"

	"github.com/mikey/orden-vaciado/internal/core"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelOpener opens .xlsx/.xlsm attachments with excelize
type ExcelOpener struct {
	logger *zap.Logger
}

// NewExcelOpener creates a new workbook opener
func NewExcelOpener(logger *zap.Logger) *ExcelOpener {
	return &ExcelOpener{logger: logger}
}

// Open parses data as an OOXML workbook
func (o *ExcelOpener) Open(data []byte) (core.Workbook, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty workbook")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	o.logger.Debug("Opened workbook",
		zap.Int("bytes", len(data)),
		zap.Strings("sheets", f.GetSheetList()))
	return &excelWorkbook{file: f}, nil
}

type excelWorkbook struct {
	file *excelize.File
}

func (b *excelWorkbook) SheetNames() []string {
	return b.file.GetSheetList()
}

// Rows streams the sheet so candidate scans only decode the rows they look at
func (b *excelWorkbook) Rows(sheet string, limit int) ([][]string, error) {
	rows, err := b.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var grid [][]string
	for rows.Next() {
		if limit > 0 && len(grid) >= limit {
			break
		}
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of sheet %q: %w", len(grid)+1, sheet, err)
		}
		grid = append(grid, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return grid, nil
}

func (b *excelWorkbook) Close() error {
	return b.file.Close()
}
