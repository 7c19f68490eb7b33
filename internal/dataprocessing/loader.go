package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"turbinecli/internal/config"
	"turbinecli/internal/errors"
	"turbinecli/pkg/contracts/domain"
)

// DiscoverInputFiles scans a directory for supported input files (.csv and
// .xlsx) and returns their paths in sorted order for deterministic runs.
func DiscoverInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read input directory %s", dir), err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

// LoadFiles reads the given input files and concatenates their rows into a
// single slice in caller-supplied file order, row order preserved within
// each file. Files are parsed concurrently up to parallelism, which cannot
// affect the result order. No validation is performed beyond required
// column presence; everything else is the cleaner's job.
func LoadFiles(ctx context.Context, files []string, parallelism int) ([]domain.RawReading, error) {
	if len(files) == 0 {
		return nil, errors.NewStorageError("no input files to load", nil)
	}
	if parallelism < 1 {
		parallelism = 1
	}

	slog.InfoContext(ctx, "loading input files",
		slog.Int("file_count", len(files)),
		slog.Int("parallelism", parallelism))

	perFile := make([][]domain.RawReading, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := loadFile(file)
			if err != nil {
				return fmt.Errorf("load %s: %w", filepath.Base(file), err)
			}
			perFile[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	readings := make([]domain.RawReading, 0)
	for i, rows := range perFile {
		slog.DebugContext(ctx, "file loaded",
			slog.String("file", filepath.Base(files[i])),
			slog.Int("rows", len(rows)))
		readings = append(readings, rows...)
	}

	slog.InfoContext(ctx, "input files loaded", slog.Int("raw_rows", len(readings)))

	return readings, nil
}

// loadFile dispatches on the file extension.
func loadFile(path string) ([]domain.RawReading, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadExcelFile(path)
	default:
		return loadCSVFile(path)
	}
}

// loadCSVFile reads one CSV file and extracts its raw readings. The header
// row is mapped by column name; extra columns are ignored.
func loadCSVFile(path string) ([]domain.RawReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open file %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewSchemaError(filepath.Base(path), config.ColumnTimestamp)
	}
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read header of %s", path), err)
	}

	columns, err := mapColumns(filepath.Base(path), header)
	if err != nil {
		return nil, err
	}

	var rows []domain.RawReading
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// A ragged or unquotable row is a row-level problem, not a
			// file-level one. Record it so the cleaner counts it.
			rows = append(rows, domain.RawReading{
				SourceFile: filepath.Base(path),
				Line:       line,
			})
			continue
		}
		rows = append(rows, rawReadingFromRecord(record, columns, filepath.Base(path), line))
	}

	return rows, nil
}

// loadExcelFile reads one Excel workbook, using the first sheet whose header
// row carries all required columns.
func loadExcelFile(path string) ([]domain.RawReading, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open file %s", path), err)
	}
	defer f.Close()

	var lastErr error
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil || len(sheetRows) == 0 {
			continue
		}

		columns, err := mapColumns(filepath.Base(path), sheetRows[0])
		if err != nil {
			lastErr = err
			continue
		}

		rows := make([]domain.RawReading, 0, len(sheetRows)-1)
		for i, record := range sheetRows[1:] {
			if isEmptyRecord(record) {
				continue
			}
			rows = append(rows, rawReadingFromRecord(record, columns, filepath.Base(path), i+2))
		}
		return rows, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.NewSchemaError(filepath.Base(path), config.ColumnTimestamp)
}

// columnMap holds the resolved index of each required column.
type columnMap struct {
	timestamp int
	turbineID int
	power     int
}

// mapColumns resolves the required column positions from a header row.
// Matching is case-insensitive and ignores surrounding whitespace.
func mapColumns(file string, header []string) (columnMap, error) {
	indexes := make(map[string]int, len(header))
	for i, name := range header {
		indexes[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cm := columnMap{}
	for _, required := range config.RequiredColumns {
		idx, ok := indexes[required]
		if !ok {
			return columnMap{}, errors.NewSchemaError(file, required)
		}
		switch required {
		case config.ColumnTimestamp:
			cm.timestamp = idx
		case config.ColumnTurbineID:
			cm.turbineID = idx
		case config.ColumnPowerOutput:
			cm.power = idx
		}
	}

	return cm, nil
}

// rawReadingFromRecord extracts the mapped fields from one record. Short
// records yield empty fields; the cleaner rejects them.
func rawReadingFromRecord(record []string, columns columnMap, file string, line int) domain.RawReading {
	field := func(idx int) string {
		if idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	return domain.RawReading{
		Timestamp:  field(columns.timestamp),
		TurbineID:  field(columns.turbineID),
		PowerRaw:   field(columns.power),
		SourceFile: file,
		Line:       line,
	}
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
