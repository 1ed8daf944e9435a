// Package excel reads p-value tables from Excel and CSV files.
package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sharpq/internal/errors"

	"github.com/xuri/excelize/v2"
)

// defaultSheet is the worksheet read from Excel files.
const defaultSheet = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: defaultSheet}
}

// WithSheet overrides the worksheet read from Excel files
func (r *DataReader) WithSheet(sheet string) *DataReader {
	if sheet != "" {
		r.sheet = sheet
	}
	return r
}

// ReadTable reads the file into a header row plus data rows
func (r *DataReader) ReadTable() (*Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.FileError(r.filePath, fmt.Errorf("%s file not found", strings.ToUpper(r.fileType)))
	}

	switch r.fileType {
	case "csv":
		return r.readCSVTable()
	case "xlsx":
		return r.readExcelTable()
	default:
		return nil, errors.FileError(r.filePath, fmt.Errorf("unsupported file type: %s", r.fileType))
	}
}

// readExcelTable reads the configured sheet into a Table
func (r *DataReader) readExcelTable() (*Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.FileError(r.filePath, err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, errors.FileError(r.filePath, fmt.Errorf("failed to read sheet %s: %w", r.sheet, err))
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)",
		r.sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return buildTable(r.filePath, rows)
}

// readCSVTable reads a CSV file into a Table
func (r *DataReader) readCSVTable() (*Table, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.FileError(r.filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, Table handles them
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.FileError(r.filePath, err)
	}

	return buildTable(r.filePath, records)
}

func buildTable(path string, rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, errors.FileError(path, fmt.Errorf("file must have a header row and at least one data row"))
	}
	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}
