package fileio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"name-matcher/internal/matching/model"
)

func TestPickHeader(t *testing.T) {
	rows := [][]string{
		{" Name ", "ID", "", "ID", "\ufeffName"},
		{"a", "1", "x", "2", "b", "extra"},
	}
	assert.Equal(t,
		[]string{"Name", "ID", "Column 3", "ID.1", "Name.1", "Column 6"},
		pickHeader(rows, 1))
}

func TestPickHeaderOutOfRange(t *testing.T) {
	rows := [][]string{{"A"}, {"1"}}
	assert.Equal(t, []string{"A"}, pickHeader(rows, 0))
	assert.Equal(t, []string{"A"}, pickHeader(rows, 9))
}

func TestRowsToMaps(t *testing.T) {
	rows := [][]string{
		{"title line"},
		{"Name", "ID"},
		{"Ana", ""},
		{"", ""},
		{"   ", ""},
		{"", "7"},
	}
	got := rowsToMaps(rows, []string{"Name", "ID"}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, model.Row{"Name": "Ana", "ID": nil}, got[0])
	assert.Equal(t, model.Row{"Name": nil, "ID": "7"}, got[1])
}

func TestReadDatasetCSV(t *testing.T) {
	t.Run("comma with BOM", func(t *testing.T) {
		in := "\ufeffContacto Nombre , Caso #\nJuan Perez,1\n,\nAna Ruiz,2\n"
		d, err := ReadDataset(strings.NewReader(in), "wise.csv", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Contacto Nombre", "Caso #"}, d.Columns)
		require.Len(t, d.Rows, 2)
		assert.Equal(t, "Juan Perez", d.Rows[0]["Contacto Nombre"])
		assert.Equal(t, "2", d.Rows[1]["Caso #"])
		assert.True(t, d.HasColumn("Contacto Nombre"))
	})

	t.Run("semicolon", func(t *testing.T) {
		in := "Cli Nombre;Fic Numero\n\"Pérez, Juan\";A-1\n"
		d, err := ReadDataset(strings.NewReader(in), "BO.CSV", 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cli Nombre", "Fic Numero"}, d.Columns)
		require.Len(t, d.Rows, 1)
		assert.Equal(t, "Pérez, Juan", d.Rows[0]["Cli Nombre"])
	})

	t.Run("empty", func(t *testing.T) {
		d, err := ReadDataset(strings.NewReader(""), "empty.csv", 1)
		require.NoError(t, err)
		assert.Empty(t, d.Columns)
		assert.Empty(t, d.Rows)
	})
}

func TestLooksUTF8(t *testing.T) {
	assert.True(t, looksUTF8([]byte("Pérez"), false))
	assert.False(t, looksUTF8([]byte{0xcf, 0xe5, 0xf0}, false))

	cut := []byte("ab\u00e9")[:3]
	assert.False(t, looksUTF8(cut, false))
	assert.True(t, looksUTF8(cut, true))
}

func TestDecoderFor(t *testing.T) {
	assert.Equal(t, charmap.Windows1251, decoderFor("windows-1251"))
	assert.Equal(t, charmap.Windows1251, decoderFor("CP1251"))
	assert.Equal(t, charmap.KOI8R, decoderFor("KOI8-R"))
	assert.Nil(t, decoderFor("utf-8"))
	assert.Nil(t, decoderFor("ISO-8859-1"))
}

func TestSniffComma(t *testing.T) {
	assert.Equal(t, ';', sniffComma([]byte("a;b;c\n1,5;2;3")))
	assert.Equal(t, ',', sniffComma([]byte("a,b\n1;2;3;4")))
	assert.Equal(t, ',', sniffComma(nil))
}

func TestReadDatasetUnsupported(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("x"), "names.ods", 1)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestReadDatasetXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{" Contacto Nombre", "Caso #", "Caso #"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Juan Perez", 10, "x"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"Ana Ruiz", 11}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	d, err := ReadDataset(&buf, "wise.xlsx", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Contacto Nombre", "Caso #", "Caso #.1"}, d.Columns)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, "10", d.Rows[0]["Caso #"])
	assert.Equal(t, "Ana Ruiz", d.Rows[1]["Contacto Nombre"])
	assert.Nil(t, d.Rows[1]["Caso #.1"])
}

// names.xls has no record for its third row.
func TestReadDatasetXLS(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "names.xls"))
	require.NoError(t, err)
	defer f.Close()

	d, err := ReadDataset(f, "names.xls", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Contacto Nombre", "Caso #"}, d.Columns)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, model.Row{"Contacto Nombre": "P\u00e9rez, Juan", "Caso #": "1"}, d.Rows[0])
	assert.Equal(t, model.Row{"Contacto Nombre": "Ana Ruiz", "Caso #": "2.5"}, d.Rows[1])
}

func TestReadDatasetBadXLS(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("not an ole2 file at all"), "broken.xls", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xls")
}

func TestReadDatasetBadXLSX(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("not a zip"), "broken.xlsx", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestWriteResultXLSX(t *testing.T) {
	res := model.Result{
		Columns:   []string{"Contacto Nombre", "Cli Nombre", "Similarity", "Caso #"},
		HasLeftID: true,
		Matches: []model.Match{
			{LeftName: "Juan Perez", RightName: "Perez Juan", Similarity: 1, LeftID: "1"},
			{LeftName: "Ana Ruiz", RightName: "Ana Ruis", Similarity: 0.88, LeftID: nil},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResultXLSX(&buf, res))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, ResultSheet, f.GetSheetName(0))

	d, err := ReadDataset(bytes.NewReader(buf.Bytes()), ResultFilename, 1)
	require.NoError(t, err)
	assert.Equal(t, res.Columns, d.Columns)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, "Perez Juan", d.Rows[0]["Cli Nombre"])
	assert.Equal(t, "1", d.Rows[0]["Similarity"])
	assert.Equal(t, "0.88", d.Rows[1]["Similarity"])
	assert.Nil(t, d.Rows[1]["Caso #"])
}
