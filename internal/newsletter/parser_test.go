package newsletter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "newsletter.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestParseCSV(t *testing.T) {
	path := writeTempCSV(t, `Date,Subject,Topic,End_Date
2024-03-04,Math,Counting to 100,2024-03-15
06/03/2024,English,Rhyming words,
`)

	items, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Math", items[0].Subject)
	assert.Equal(t, "Counting to 100", items[0].Topic)
	assert.Equal(t, date(2024, time.March, 4), items[0].StartDate)
	require.NotNil(t, items[0].EndDate)
	assert.Equal(t, date(2024, time.March, 15), *items[0].EndDate)

	assert.Equal(t, "English", items[1].Subject)
	assert.Equal(t, date(2024, time.March, 6), items[1].StartDate)
	assert.Nil(t, items[1].EndDate)
}

func TestParseCSVSkipsIncompleteRows(t *testing.T) {
	path := writeTempCSV(t, `date,subject,topic
2024-03-04,Math,Counting to 100
2024-03-05,,Missing subject
2024-03-06,English,
not a date,EVS,Plants around us
`)

	items, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Counting to 100", items[0].Topic)
}

func TestParseCSVAcceptsStartDateHeader(t *testing.T) {
	path := writeTempCSV(t, `start_date,subject,topic
04/03/24,EVS,Plants around us
`)

	items, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, date(2024, time.March, 4), items[0].StartDate)
}

func TestParseExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsletter.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Date", "Subject", "Topic"},
		{"2024-03-04", "Math", "Counting to 100"},
		{"2024-03-06", "English", "Rhyming words"},
		{"", "", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	f.Close()

	items, err := Parse(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Math", items[0].Subject)
	assert.Equal(t, "Rhyming words", items[1].Topic)
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("newsletter.pdf")
	assert.Error(t, err)
}
