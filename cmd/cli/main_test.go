package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absentee/internal/errors"
)

const sampleCSV = `Sex,Age,Num_sick_days
М,25,2
М,31,6
М,44,9
М,52,4
Ж,23,1
Ж,36,5
Ж,47,3
Ж,58,8
X,40,2
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeDefaultsToMinimumThresholds(t *testing.T) {
	out, err := execute(t, "analyze", writeSample(t))
	require.NoError(t, err)

	assert.Contains(t, out, "File: stats.csv (9 rows)")
	assert.Contains(t, out, "Age threshold: 23 (observed [23, 58])")
	assert.Contains(t, out, "Sick-days threshold: 1 (observed [1, 9])")
	assert.Contains(t, out, "Hypothesis 1: Men are off sick")
	assert.Contains(t, out, "Hypothesis 2: Employees older than 23")
}

func TestAnalyzeJSON(t *testing.T) {
	out, err := execute(t, "analyze", writeSample(t), "--age", "35", "--sick-days", "3", "--format", "json")
	require.NoError(t, err)

	var payload struct {
		Thresholds struct {
			Age      int `json:"age_threshold"`
			SickDays int `json:"sick_days_threshold"`
		} `json:"thresholds"`
		Hypotheses []struct {
			Key string `json:"key"`
		} `json:"hypotheses"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, 35, payload.Thresholds.Age)
	assert.Equal(t, 3, payload.Thresholds.SickDays)
	assert.Len(t, payload.Hypotheses, 2)
}

func TestAnalyzeMarkdownAndCharts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	out, err := execute(t, "analyze", writeSample(t), "--age", "35", "--format", "markdown", "--charts", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "# Sick-day analysis of stats.csv")

	for _, name := range []string{"box_sex", "hist_sex", "box_age", "hist_age"} {
		data, err := os.ReadFile(filepath.Join(dir, name+".svg"))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "<svg")
	}
}

func TestAnalyzeErrors(t *testing.T) {
	path := writeSample(t)

	_, err := execute(t, "analyze", path, "--age", "99")
	assert.Equal(t, errors.CodeRangeError, errors.GetCode(err))

	_, err = execute(t, "analyze", path, "--format", "yaml")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = execute(t, "analyze")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	out, err := execute(t, "describe", writeSample(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Rows: 9")
	assert.Contains(t, out, "Age: [23, 58]")
	assert.Contains(t, out, "Num_sick_days: [1, 9]")
	assert.Contains(t, out, `"М": 4`)
	assert.Contains(t, out, `"Ж": 4`)
	assert.Contains(t, out, `"X": 1 (ignored by the sex comparison)`)
}

func TestGenerateThenDescribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synthetic.xlsx")
	out, err := execute(t, "generate", "--out", path, "--rows", "60", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 60 rows to "+path)

	out, err = execute(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 60")
	assert.Contains(t, out, "Department")

	_, err = execute(t, "generate", "--out", filepath.Join(t.TempDir(), "x.json"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
