package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"absentee/domain/attendance"
	"absentee/internal/errors"
)

const sampleCSV = `Num_sick_days,Age,Sex
5,39,Ж
4,54,М
4,26,М
5,42,Ж
 7 ,29.0,М
`

func TestLoadCSV(t *testing.T) {
	ds, err := Load(strings.NewReader(sampleCSV), "stats.csv")
	require.NoError(t, err)

	assert.Equal(t, "stats.csv", ds.Filename)
	assert.Equal(t, []string{"Num_sick_days", "Age", "Sex"}, ds.Headers)
	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, attendance.Range{Min: 26, Max: 54}, ds.AgeRange())
	assert.Equal(t, attendance.Range{Min: 4, Max: 7}, ds.SickDaysRange())

	records := ds.Records()
	assert.Equal(t, attendance.Record{Sex: attendance.SexMale, Age: 29, NumSickDays: 7}, records[4])
	assert.Equal(t, map[attendance.Sex]int{attendance.SexMale: 3, attendance.SexFemale: 2}, ds.SexCounts())
}

func TestLoadCSVWithBOMAndExtraColumns(t *testing.T) {
	input := "\ufeffSex,Age,Num_sick_days,Department\nМ,30,2,Sales\nЖ,41,0,IT\n"
	ds, err := Load(strings.NewReader(input), "with_bom.CSV")
	require.NoError(t, err)

	assert.Equal(t, "Sex", ds.Headers[0])
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"Ж", "41", "0", "IT"}, ds.Raw[1])
}

func TestLoadMissingColumn(t *testing.T) {
	_, err := Load(strings.NewReader("Sex,Age\nМ,30\n"), "partial.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Num_sick_days")
}

func TestLoadRejectsBadCells(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"non numeric age", "Sex,Age,Num_sick_days\nМ,thirty,2\n", "not a number"},
		{"empty sick days", "Sex,Age,Num_sick_days\nМ,30,2\nЖ,31,\n", "row 3"},
		{"fractional value", "Sex,Age,Num_sick_days\nМ,30.5,2\n", "not an integer"},
		{"negative value", "Sex,Age,Num_sick_days\nМ,30,-1\n", "negative"},
		{"ragged row", "Sex,Age,Num_sick_days\nМ,30\n", "CSV"},
		{"header only", "Sex,Age,Num_sick_days\n", "at least a header row"},
		{"repeated sex header", "Sex,Age,Num_sick_days,Sex\nМ,30,2,Ж\nЖ,41,0,М\n", "duplicate column(s): Sex"},
		{"repeated age header", "Age,Sex,Age,Num_sick_days\n30,М,31,2\n", "duplicate column(s): Age"},
		{"row of empty cells", "Sex,Age,Num_sick_days\nМ,30,2\n,,\nЖ,31,3\n", `row 3: Age value "" is not a number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Load(strings.NewReader(tt.input), "bad.csv")
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	_, err := Load(strings.NewReader(sampleCSV), "stats.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Sex", "Age", "Num_sick_days"},
		{"М", 45, 8},
		{"Ж", 23, 1},
		{"Ж", 37, 3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Load(bytes.NewReader(buf.Bytes()), "stats.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, attendance.Range{Min: 23, Max: 45}, ds.AgeRange())
	assert.Equal(t, attendance.Record{Sex: attendance.SexMale, Age: 45, NumSickDays: 8}, ds.Records()[0])
}

func TestLoadCorruptXLSX(t *testing.T) {
	_, err := Load(strings.NewReader("not a zip archive"), "broken.xlsx")
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}

// xlsxBuffer writes rows to the first sheet, placing rows[i] on sheet row at[i]
func xlsxBuffer(t *testing.T, at []int, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, at[i])
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestLoadXLSXReportsSheetRowAfterGap(t *testing.T) {
	src := xlsxBuffer(t, []int{1, 2, 4}, [][]interface{}{
		{"Sex", "Age", "Num_sick_days"},
		{"М", 45, 8},
		{"Ж", "abc", 1},
	})

	_, err := Load(src, "gap.xlsx")
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "row 4: Age")
}

func TestLoadXLSXSkipsGapRows(t *testing.T) {
	src := xlsxBuffer(t, []int{1, 2, 5}, [][]interface{}{
		{"Sex", "Age", "Num_sick_days"},
		{"М", 45, 8},
		{"Ж", 23, 1},
	})

	ds, err := Load(src, "gap.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestLoadXLSXRejectsCellsBeyondHeader(t *testing.T) {
	src := xlsxBuffer(t, []int{1, 2, 3}, [][]interface{}{
		{"Sex", "Age", "Num_sick_days"},
		{"М", 45, 8},
		{"Ж", 23, 1, "stray"},
	})

	_, err := Load(src, "ragged.xlsx")
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "row 3 has 4 fields, the header has 3")
}

func TestLoadCSVReportsSourceLine(t *testing.T) {
	input := "Sex,Age,Num_sick_days\nМ,30,2\n\n\nЖ,31,x\n"
	_, err := Load(strings.NewReader(input), "lines.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `row 5: Num_sick_days value "x" is not a number`)
}
