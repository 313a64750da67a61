package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writePriceListXLSX(t *testing.T) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Prisliste")
	require.NoError(t, err)

	for _, cells := range [][]string{
		{"Varenr", "Navn", "Kostpris"},
		{"1001", "Stikkontakt", "28.50"},
		{"1002", "Afbryder", "19.75"},
	} {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	path := filepath.Join(t.TempDir(), "prisliste.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()
	path := writePriceListXLSX(t)

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1001", "Stikkontakt", "28.50"}, rows[0])
}

func TestReadXLSXBySheetName(t *testing.T) {
	t.Parallel()
	path := writePriceListXLSX(t)

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Prisliste"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Mangler"})
	assert.Error(t, err)
}

func TestReadXLSXSheetIndexOutOfRange(t *testing.T) {
	t.Parallel()
	path := writePriceListXLSX(t)

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 5})
	assert.Error(t, err)
}
