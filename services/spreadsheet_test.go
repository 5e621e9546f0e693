package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadSheetCSV(t *testing.T) {
	csvData := "Name,Phone,Vehicles\nJohn Doe,(212) 867-5309,Toyota Camry 2020; Honda Civic 2018\nJane Roe,(212) 867-5310,\n"

	sheet, err := ReadSheet("customers.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Phone", "Vehicles"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "John Doe", sheet.Rows[0][0])
	assert.Equal(t, "(212) 867-5310", sheet.Rows[1][1])
}

func TestReadSheetCSVRaggedRows(t *testing.T) {
	// Exports often carry trailing commas or short rows; both must read.
	csvData := "Name,Phone,Vehicles\nJohn,2128675309\nJane,2128675310,Ford F-150,extra\n"

	sheet, err := ReadSheet("customers.csv", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Len(t, sheet.Rows[0], 2)
	assert.Len(t, sheet.Rows[1], 4)
}

func TestReadSheetXLSXMatchesCSV(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	data := [][]interface{}{
		{"Name", "Phone", "Visits"},
		{"John Doe", "(212) 867-5309", 7},
		{"Jane Roe", "(212) 867-5310", 2},
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	sheet, err := ReadSheet("customers.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Phone", "Visits"}, sheet.Header)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "John Doe", sheet.Rows[0][0])
	// Numeric cells arrive as their string rendering.
	assert.Equal(t, "7", sheet.Rows[0][2])
}

func TestReadSheetUnsupportedExtension(t *testing.T) {
	_, err := ReadSheet("customers.pdf", strings.NewReader("whatever"))
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestReadSheetCorruptXLSX(t *testing.T) {
	_, err := ReadSheet("customers.xlsx", strings.NewReader("this is not a zip archive"))
	require.ErrorIs(t, err, ErrMalformedFile)
}

func TestReadSheetEmptyCSV(t *testing.T) {
	_, err := ReadSheet("customers.csv", strings.NewReader(""))
	require.ErrorIs(t, err, ErrMalformedFile)
}
