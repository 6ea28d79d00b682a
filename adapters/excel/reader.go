package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// File types understood by the reader
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
)

const utf8BOM = "\ufeff"

// DataReader reads CSV and Excel uploads into raw rows
type DataReader struct {
	filename string
	fileType string
	logger   *slog.Logger
}

// NewDataReader creates a reader for the given file name; the extension picks the format
func NewDataReader(filename string) *DataReader {
	return &DataReader{
		filename: filename,
		fileType: DetectFileType(filename),
		logger:   slog.With("component", "data_reader", "file", filename),
	}
}

// DetectFileType maps a file extension to a file type, or "" when unsupported
func DetectFileType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FileTypeCSV
	case ".xlsx":
		return FileTypeXLSX
	default:
		return ""
	}
}

// FileType returns the detected file type
func (r *DataReader) FileType() string {
	return r.fileType
}

// Read consumes src once and returns its header and data rows
func (r *DataReader) Read(src io.Reader) (*ExcelData, error) {
	start := time.Now()

	var rows [][]string
	var lines []int
	var err error
	switch r.fileType {
	case FileTypeCSV:
		rows, lines, err = r.readCSVRows(src)
	case FileTypeXLSX:
		rows, lines, err = r.readExcelRows(src)
	default:
		return nil, fmt.Errorf("unsupported file type for %q: only .csv and .xlsx are accepted", r.filename)
	}
	if err != nil {
		return nil, err
	}

	rows, lines = dropEmptyRows(rows, lines)
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	data, err := r.processRows(rows, lines)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("file read",
		"type", r.fileType,
		"columns", len(data.Headers),
		"rows", len(data.Rows),
		"elapsed", time.Since(start))
	return data, nil
}

// readExcelRows reads the first worksheet of an xlsx workbook. Sheet row i+1 is rows[i].
func (r *DataReader) readExcelRows(src io.Reader) ([][]string, []int, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("Excel file has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return rows, lines, nil
}

// readCSVRows reads comma-separated rows with their starting line numbers; ragged rows are an error
func (r *DataReader) readCSVRows(src io.Reader) ([][]string, []int, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, lines, nil
}

// processRows trims every cell and pads short rows to the header width.
// A row with a non-blank cell beyond the header is rejected, as CSV does for ragged rows.
func (r *DataReader) processRows(rows [][]string, lines []int) (*ExcelData, error) {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		for j := len(headers); j < len(row); j++ {
			if strings.TrimSpace(row[j]) != "" {
				return nil, fmt.Errorf("row %d has %d fields, the header has %d", lines[i+1], len(row), len(headers))
			}
		}
		cells := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		dataRows = append(dataRows, cells)
	}

	return &ExcelData{Headers: headers, Rows: dataRows, Lines: lines[1:]}, nil
}

// dropEmptyRows removes rows without any cell, such as the gaps excelize reports
// between filled sheet rows. Rows with empty cells are kept so they fail coercion.
func dropEmptyRows(rows [][]string, lines []int) ([][]string, []int) {
	keptRows := rows[:0]
	keptLines := lines[:0]
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		keptRows = append(keptRows, row)
		keptLines = append(keptLines, lines[i])
	}
	return keptRows, keptLines
}
