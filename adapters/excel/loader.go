package excel

import (
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"absentee/domain/attendance"
	"absentee/internal/errors"
)

// maxCount bounds Age and Num_sick_days so the int conversion is exact
const maxCount = 1 << 31

// Load parses a CSV or XLSX stream into an attendance dataset. Any missing column or
// non-coercible cell fails the whole load with a PARSE_ERROR; no rows are dropped.
func Load(src io.Reader, filename string) (*attendance.Dataset, error) {
	reader := NewDataReader(filename)
	if reader.FileType() == "" {
		return nil, errors.Newf(errors.CodeParseError, "unsupported file %q: only .csv and .xlsx are accepted", filename)
	}

	data, err := reader.Read(src)
	if err != nil {
		return nil, errors.WithCode(errors.CodeParseError, errors.Wrapf(err, "failed to read %s", filename))
	}

	if err := checkColumns(data.Headers); err != nil {
		return nil, err
	}

	records, err := typedRecords(data)
	if err != nil {
		return nil, err
	}

	slog.Info("dataset loaded",
		"component", "loader",
		"file", filename,
		"rows", len(records),
		"columns", len(data.Headers))

	return attendance.NewDataset(filename, data.Headers, data.Rows, records), nil
}

// checkColumns requires every required column exactly once. Other named columns may
// not repeat either; blank header cells are ignored.
func checkColumns(headers []string) error {
	counts := make(map[string]int, len(headers))
	var duplicates []string
	for _, h := range headers {
		if h == "" {
			continue
		}
		counts[h]++
		if counts[h] == 2 {
			duplicates = append(duplicates, h)
		}
	}
	if len(duplicates) > 0 {
		return errors.Newf(errors.CodeParseError, "duplicate column(s): %s", strings.Join(duplicates, ", "))
	}

	var missing []string
	for _, required := range attendance.RequiredColumns {
		if counts[required] == 0 {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.CodeParseError, "missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// typedRecords loads the raw rows into a dataframe with typed required columns
// and converts them into records
func typedRecords(data *ExcelData) ([]attendance.Record, error) {
	df := dataframe.LoadRecords(data.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			attendance.ColumnAge:         series.Float,
			attendance.ColumnNumSickDays: series.Float,
		}),
	)
	if df.Err != nil {
		return nil, errors.WithCode(errors.CodeParseError, errors.Wrap(df.Err, "failed to build typed table"))
	}

	sexCol := df.Col(attendance.ColumnSex)
	if sexCol.Err != nil {
		return nil, errors.WithCode(errors.CodeParseError, errors.Wrapf(sexCol.Err, "column %s", attendance.ColumnSex))
	}
	sexes := sexCol.Records()
	ages, err := integerColumn(df, data, attendance.ColumnAge)
	if err != nil {
		return nil, err
	}
	sickDays, err := integerColumn(df, data, attendance.ColumnNumSickDays)
	if err != nil {
		return nil, err
	}

	records := make([]attendance.Record, df.Nrow())
	for i := range records {
		records[i] = attendance.Record{
			Sex:         attendance.Sex(sexes[i]),
			Age:         ages[i],
			NumSickDays: sickDays[i],
		}
	}
	return records, nil
}

// integerColumn coerces a float column to non-negative integers; rows are reported by source line
func integerColumn(df dataframe.DataFrame, data *ExcelData, name string) ([]int, error) {
	col := df.Col(name)
	if col.Err != nil {
		return nil, errors.WithCode(errors.CodeParseError, errors.Wrapf(col.Err, "column %s", name))
	}

	idx := data.ColumnIndex(name)
	values := col.Float()
	out := make([]int, len(values))
	for i, v := range values {
		line := data.Line(i)
		raw := data.Rows[i][idx]
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return nil, errors.Newf(errors.CodeParseError, "row %d: %s value %q is not a number", line, name, raw)
		case v != math.Trunc(v):
			return nil, errors.Newf(errors.CodeParseError, "row %d: %s value %q is not an integer", line, name, raw)
		case v < 0:
			return nil, errors.Newf(errors.CodeParseError, "row %d: %s value %q is negative", line, name, raw)
		case v >= maxCount:
			return nil, errors.Newf(errors.CodeParseError, "row %d: %s value %q is too large", line, name, raw)
		}
		out[i] = int(v)
	}
	return out, nil
}
