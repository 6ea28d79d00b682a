package excel

// ExcelData represents a raw tabular file: trimmed headers and positional string cells.
// Every row has exactly len(Headers) cells.
type ExcelData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows
	Lines   []int      // Source line (CSV) or sheet row (XLSX) of each data row
}

// Line returns the 1-based source position of data row i
func (d *ExcelData) Line(i int) int {
	if i < len(d.Lines) {
		return d.Lines[i]
	}
	return i + 2
}

// ColumnIndex returns the position of a header, or -1 if it is absent
func (d *ExcelData) ColumnIndex(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Records returns the header row followed by the data rows
func (d *ExcelData) Records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	records = append(records, d.Headers)
	return append(records, d.Rows...)
}
