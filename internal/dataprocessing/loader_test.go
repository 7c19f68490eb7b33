package dataprocessing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"turbinecli/internal/errors"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFiles_SingleCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "data_group_1.csv", `timestamp,turbine_id,power_output
2024-03-01 00:00:00,T01,1.5
2024-03-01 01:00:00,T01,
2024-03-01 00:00:00,T02,2.25
`)

	readings, err := LoadFiles(context.Background(), []string{path}, 1)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	assert.Equal(t, "2024-03-01 00:00:00", readings[0].Timestamp)
	assert.Equal(t, "T01", readings[0].TurbineID)
	assert.Equal(t, "1.5", readings[0].PowerRaw)
	assert.Equal(t, "data_group_1.csv", readings[0].SourceFile)
	assert.Equal(t, 2, readings[0].Line)

	// Empty power cell is preserved as missing, not rejected here.
	assert.Equal(t, "", readings[1].PowerRaw)
}

func TestLoadFiles_ColumnOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "shuffled.csv", `power_output,TURBINE_ID, timestamp
3.5,T07,2024-03-01 12:00:00
`)

	readings, err := LoadFiles(context.Background(), []string{path}, 1)
	require.NoError(t, err)
	require.Len(t, readings, 1)

	assert.Equal(t, "T07", readings[0].TurbineID)
	assert.Equal(t, "3.5", readings[0].PowerRaw)
	assert.Equal(t, "2024-03-01 12:00:00", readings[0].Timestamp)
}

func TestLoadFiles_MissingColumnIsSchemaError(t *testing.T) {
	dir := t.TempDir()
	good := writeCSV(t, dir, "good.csv", "timestamp,turbine_id,power_output\n2024-03-01,T01,1\n")
	bad := writeCSV(t, dir, "bad.csv", "timestamp,turbine_id\n2024-03-01,T01\n")

	_, err := LoadFiles(context.Background(), []string{good, bad}, 2)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
	assert.Contains(t, err.Error(), "bad.csv")
	assert.Contains(t, err.Error(), "power_output")
}

func TestLoadFiles_OrderPreservedAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 6; i++ {
		content := "timestamp,turbine_id,power_output\n"
		for j := 0; j < 5; j++ {
			content += fmt.Sprintf("2024-03-0%d 0%d:00:00,F%d,%d\n", i+1, j, i, j)
		}
		files = append(files, writeCSV(t, dir, fmt.Sprintf("part_%d.csv", i), content))
	}

	readings, err := LoadFiles(context.Background(), files, 4)
	require.NoError(t, err)
	require.Len(t, readings, 30)

	// Rows must appear in caller-supplied file order regardless of which
	// goroutine parsed which file.
	for i := 0; i < 6; i++ {
		for j := 0; j < 5; j++ {
			r := readings[i*5+j]
			assert.Equal(t, fmt.Sprintf("F%d", i), r.TurbineID)
			assert.Equal(t, fmt.Sprintf("%d", j), r.PowerRaw)
		}
	}
}

func TestLoadFiles_Excel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"timestamp", "turbine_id", "power_output"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2024-03-01 00:00:00", "T01", "2.5"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"2024-03-01 01:00:00", "T02", ""}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	readings, err := LoadFiles(context.Background(), []string{path}, 1)
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, "T01", readings[0].TurbineID)
	assert.Equal(t, "2.5", readings[0].PowerRaw)
	assert.Equal(t, "feed.xlsx", readings[0].SourceFile)
	assert.Equal(t, "T02", readings[1].TurbineID)
	assert.Equal(t, "", readings[1].PowerRaw)
}

func TestLoadFiles_NoFiles(t *testing.T) {
	_, err := LoadFiles(context.Background(), nil, 1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "b.csv", "timestamp,turbine_id,power_output\n")
	writeCSV(t, dir, "a.csv", "timestamp,turbine_id,power_output\n")
	writeCSV(t, dir, "notes.txt", "ignore me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	files, err := DiscoverInputFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Sorted for deterministic runs.
	assert.Equal(t, filepath.Join(dir, "a.csv"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.csv"), files[1])
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	_, err := DiscoverInputFiles(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}
