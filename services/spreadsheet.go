package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is a decoded spreadsheet: one header row plus data rows, every cell
// already a string. XLSX cell types (number, boolean) arrive as their string
// rendering and get coerced per column by the row parser.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// ReadSheet decodes a CSV or XLSX upload by file extension. Any decode
// failure wraps ErrMalformedFile, which aborts the whole batch.
func ReadSheet(filename string, r io.Reader) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrMalformedFile, filepath.Ext(filename))
	}
}

func readCSV(r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may have trailing commas

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedFile, err)
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrMalformedFile, err)
		}
		rows = append(rows, record)
	}

	return &Sheet{Header: header, Rows: rows}, nil
}

func readXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformedFile, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrMalformedFile, sheets[0])
	}

	return &Sheet{Header: rows[0], Rows: rows[1:]}, nil
}
