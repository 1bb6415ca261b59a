// Package loader ingests daily CSV drive snapshots into memory.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/drivestack/drivehealth/internal/models"
	"github.com/drivestack/drivehealth/internal/utils"
)

// Column names as they appear in Backblaze-style snapshot headers. Only
// serial_number and failure must be present; everything else is optional
// and zero-filled when absent.
const (
	colSerial   = "serial_number"
	colModel    = "model"
	colCapacity = "capacity_bytes"
	colFailure  = "failure"
)

// smartColumns maps the whitelisted raw S.M.A.R.T. codes to a setter on
// the loaded record. Codes double as the rename table: the numeric code
// never leaks past this package.
var smartColumns = map[string]func(*models.DriveRecord, float64){
	"smart_5_raw":   func(r *models.DriveRecord, v float64) { r.ReallocatedSectors = v },
	"smart_9_raw":   func(r *models.DriveRecord, v float64) { r.PowerOnHours = v },
	"smart_187_raw": func(r *models.DriveRecord, v float64) { r.UncorrectableErrors = v },
	"smart_194_raw": func(r *models.DriveRecord, v float64) { r.Temperature = v },
	"smart_197_raw": func(r *models.DriveRecord, v float64) { r.PendingSectors = v },
	"smart_198_raw": func(r *models.DriveRecord, v float64) { r.OfflineUncorrectable = v },
}

// Loader reads every CSV file directly inside a directory and concatenates
// the rows. Row order across files carries no meaning.
type Loader struct {
	logger *slog.Logger
}

// New constructs a Loader.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads all CSV files in dir (non-recursive) and returns the combined
// records plus the names of files that were skipped as unreadable or
// schema-mismatched. It fails with *utils.NotFoundError when the directory
// holds no CSV files, or when every file had to be skipped.
func (l *Loader) Load(dir string) ([]models.DriveRecord, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read data directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, nil, &utils.NotFoundError{Path: dir}
	}

	l.logger.Info("combining snapshot files", slog.Int("files", len(files)), slog.String("dir", dir))

	var records []models.DriveRecord
	var skipped []string
	for _, file := range files {
		rows, err := l.loadFile(file)
		if err != nil {
			l.logger.Warn("skipping snapshot file", slog.String("file", file), slog.Any("error", err))
			skipped = append(skipped, filepath.Base(file))
			continue
		}
		records = append(records, rows...)
	}

	if len(records) == 0 {
		return nil, skipped, &utils.NotFoundError{Path: dir, Msg: "no data could be loaded from the CSV files"}
	}

	l.logger.Info("data combination complete", slog.Int("records", len(records)), slog.Int("skipped", len(skipped)))
	return records, skipped, nil
}

func (l *Loader) loadFile(path string) ([]models.DriveRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, required := range []string{colSerial, colFailure} {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &utils.SchemaError{File: filepath.Base(path), Missing: missing}
	}

	for code := range smartColumns {
		if _, ok := index[code]; !ok {
			l.logger.Debug("column absent, loading as zero", slog.String("file", filepath.Base(path)), slog.String("column", code))
		}
	}

	var records []models.DriveRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := models.DriveRecord{
			SerialNumber:  cell(row, index, colSerial),
			Model:         cell(row, index, colModel),
			CapacityBytes: intCell(row, index, colCapacity),
			Failed:        cell(row, index, colFailure) == "1",
		}
		for code, set := range smartColumns {
			set(&rec, floatCell(row, index, code))
		}
		records = append(records, rec)
	}
	return records, nil
}

func cell(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// floatCell parses a numeric cell, substituting zero for missing or
// malformed values so downstream feature computation never sees gaps.
func floatCell(row []string, index map[string]int, name string) float64 {
	raw := cell(row, index, name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func intCell(row []string, index map[string]int, name string) int64 {
	raw := cell(row, index, name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
