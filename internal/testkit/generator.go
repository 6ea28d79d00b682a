// Package testkit generates synthetic attendance files with known effects,
// for tests and for trying the dashboard without real personnel data.
package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat/distuv"

	"absentee/domain/attendance"
	"absentee/internal/errors"
)

// ColumnDepartment is the extra, non-required column the generator adds
const ColumnDepartment = "Department"

// GeneratorConfig shapes the synthetic population. Sick days are Poisson
// distributed with mean BaseSickDays, plus MaleExtra for men and OlderExtra
// for employees older than OlderThan.
type GeneratorConfig struct {
	Rows         int      `json:"rows"`
	Seed         uint64   `json:"seed"`
	MaleShare    float64  `json:"male_share"`
	MinAge       int      `json:"min_age"`
	MaxAge       int      `json:"max_age"`
	OlderThan    int      `json:"older_than"`
	BaseSickDays float64  `json:"base_sick_days"`
	MaleExtra    float64  `json:"male_extra"`
	OlderExtra   float64  `json:"older_extra"`
	MaxSickDays  int      `json:"max_sick_days"`
	Departments  []string `json:"departments"`
}

// DefaultConfig returns a mid-sized company with a mild effect on both hypotheses
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Rows:         200,
		Seed:         42,
		MaleShare:    0.5,
		MinAge:       22,
		MaxAge:       64,
		OlderThan:    35,
		BaseSickDays: 3,
		MaleExtra:    1.5,
		OlderExtra:   1,
		MaxSickDays:  30,
		Departments:  []string{"Sales", "IT", "Operations", "Finance"},
	}
}

func (c GeneratorConfig) validate() error {
	switch {
	case c.Rows <= 0:
		return errors.ValidationError("rows must be positive")
	case c.MaleShare < 0 || c.MaleShare > 1:
		return errors.ValidationError("male share must be within [0, 1]")
	case c.MinAge < 0 || c.MinAge > c.MaxAge:
		return errors.ValidationError(fmt.Sprintf("invalid age span [%d, %d]", c.MinAge, c.MaxAge))
	case c.BaseSickDays <= 0 || c.BaseSickDays+min(c.MaleExtra, 0)+min(c.OlderExtra, 0) <= 0:
		return errors.ValidationError("sick-day means must stay positive")
	case c.MaxSickDays < 0:
		return errors.ValidationError("max sick days must not be negative")
	}
	return nil
}

// Generate draws a deterministic dataset for cfg.Seed
func Generate(cfg GeneratorConfig) (*attendance.Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	headers := append([]string(nil), attendance.RequiredColumns...)
	if len(cfg.Departments) > 0 {
		headers = append(headers, ColumnDepartment)
	}

	records := make([]attendance.Record, 0, cfg.Rows)
	raw := make([][]string, 0, cfg.Rows)
	for i := 0; i < cfg.Rows; i++ {
		sex := attendance.SexFemale
		if rng.Float64() < cfg.MaleShare {
			sex = attendance.SexMale
		}
		age := cfg.MinAge + rng.IntN(cfg.MaxAge-cfg.MinAge+1)

		lambda := cfg.BaseSickDays
		if sex == attendance.SexMale {
			lambda += cfg.MaleExtra
		}
		if age > cfg.OlderThan {
			lambda += cfg.OlderExtra
		}
		sickDays := min(int(distuv.Poisson{Lambda: lambda, Src: src}.Rand()), cfg.MaxSickDays)

		records = append(records, attendance.Record{Sex: sex, Age: age, NumSickDays: sickDays})
		row := []string{string(sex), strconv.Itoa(age), strconv.Itoa(sickDays)}
		if len(cfg.Departments) > 0 {
			row = append(row, cfg.Departments[rng.IntN(len(cfg.Departments))])
		}
		raw = append(raw, row)
	}

	return attendance.NewDataset("synthetic", headers, raw, records), nil
}

// WriteCSV writes the header and raw rows of ds as comma-separated values
func WriteCSV(w io.Writer, ds *attendance.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(ds.Raw); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes ds to the first sheet of a new workbook. Numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, ds *attendance.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, len(ds.Headers))
	for i, h := range ds.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	records := ds.Records()
	for r, raw := range ds.Raw {
		row := make([]any, len(raw))
		for c, v := range raw {
			row[c] = v
		}
		// first three columns follow RequiredColumns order
		row[1] = records[r].Age
		row[2] = records[r].NumSickDays

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
