package ledger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	goexcel "github.com/VantageDataChat/GoExcel"

	"github.com/takumik/keizu/pkg/errors"
)

// Read parses an .xlsx workbook from r and returns the ledger on the named
// sheet. An empty sheet name selects DefaultSheet.
func Read(r io.Reader, sheet string) (*Ledger, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return ReadBytes(data, sheet)
}

// ReadFile parses the .xlsx workbook at path. See Read.
func ReadFile(path, sheet string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	l, err := ReadBytes(data, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ReadBytes parses an in-memory .xlsx workbook.
func ReadBytes(data []byte, sheet string) (*Ledger, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}

	reader := goexcel.NewXLSXReader()
	wb, err := reader.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLedger, err, "parse workbook")
	}

	ws, err := wb.GetSheetByName(sheet)
	if err != nil {
		return nil, errors.New(errors.ErrCodeMissingSheet,
			"sheet %q not found (available: %s)", sheet, strings.Join(wb.GetSheetNames(), ", "))
	}

	raw, err := ws.RowIterator()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLedger, err, "read sheet %q", sheet)
	}

	// Cells arrive sparse, indexed by their column. Flatten each row into a
	// dense string slice before header/record parsing.
	rows := make([][]string, len(raw))
	for i, row := range raw {
		width := 0
		for _, c := range row {
			if c == nil || c.IsEmpty() {
				continue
			}
			if c.Col()+1 > width {
				width = c.Col() + 1
			}
		}
		dense := make([]string, width)
		for _, c := range row {
			if c == nil || c.IsEmpty() {
				continue
			}
			dense[c.Col()] = c.GetFormattedValue()
		}
		rows[i] = dense
	}

	return parseRows(sheet, rows)
}
