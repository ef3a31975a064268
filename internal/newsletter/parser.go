package newsletter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/studyplanner/pkg/models"
)

// Accepted date formats in newsletter tables, tried in order. Schools are
// not consistent: day-first and 2-digit years both show up.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"02/01/06",
	"01/02/06",
	"02-01-06",
}

// Parse extracts curriculum items from a newsletter table. The format is
// chosen by file extension: .csv or .xlsx. Expected columns (matched by
// header name, case-insensitive): date (or start_date), subject, topic and
// optionally end_date. Rows with a missing subject, topic or date are
// skipped rather than failing the whole upload.
func Parse(filePath string) ([]models.CurriculumItem, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".csv":
		return parseCSV(filePath)
	case ".xlsx":
		return parseExcel(filePath)
	default:
		return nil, fmt.Errorf("unsupported newsletter format: %s", ext)
	}
}

func parseCSV(filePath string) ([]models.CurriculumItem, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %v", err)
	}
	columns := columnIndex(header)

	var items []models.CurriculumItem
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %v", err)
		}
		if item, ok := rowToItem(row, columns); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func parseExcel(filePath string) ([]models.CurriculumItem, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := columnIndex(rows[0])
	var items []models.CurriculumItem
	for _, row := range rows[1:] {
		if item, ok := rowToItem(row, columns); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// columnIndex maps normalized header names to their positions
func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

// rowToItem converts one table row to a curriculum item. Returns false when
// the row lacks a subject, topic or parsable start date.
func rowToItem(row []string, columns map[string]int) (models.CurriculumItem, bool) {
	subject := strings.TrimSpace(cell(row, columns, "subject"))
	topic := strings.TrimSpace(cell(row, columns, "topic"))
	if subject == "" || topic == "" {
		return models.CurriculumItem{}, false
	}

	rawDate := cell(row, columns, "date")
	if rawDate == "" {
		rawDate = cell(row, columns, "start_date")
	}
	startDate, ok := parseDate(rawDate)
	if !ok {
		return models.CurriculumItem{}, false
	}

	item := models.CurriculumItem{
		Subject:   subject,
		Topic:     topic,
		StartDate: startDate,
	}
	if endDate, ok := parseDate(cell(row, columns, "end_date")); ok {
		item.EndDate = &endDate
	}
	return item, true
}

func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
