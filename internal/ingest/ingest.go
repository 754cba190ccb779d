package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"prismcheck/internal/logging"
)

// Record is one parsed statistic from an external result file.
type Record struct {
	Test    string   `json:"test"`  // caller-supplied test label
	Kind    StatKind `json:"kind"`
	Label   string   `json:"label"` // the raw first-column label that matched
	Value   float64  `json:"value"`
	Derived bool     `json:"derived,omitempty"` // true when computed, e.g. R from R²
}

// IngestFile parses the result file at path, looking for one statistic per
// requested kind. Unrecognized label conventions yield no record for that
// kind — absent evidence is surfaced as MANUAL downstream, never guessed at.
// CSV and XLSX files are supported, selected by extension.
func IngestFile(path, test string, kinds []StatKind) ([]Record, error) {
	grid, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	log := logging.New("ingest")

	var records []Record
	for _, kind := range kinds {
		rec, ok := findStatistic(grid, kind)
		if !ok {
			log.Warn("no recognized label for statistic",
				"file", path, "test", test, "kind", string(kind))
			continue
		}
		rec.Test = test
		records = append(records, rec)
	}
	return records, nil
}

// findStatistic scans the grid for the first row whose leading cell matches
// a pattern for kind, then extracts the adjacent numeric value.
func findStatistic(grid [][]string, kind StatKind) (Record, bool) {
	patterns, ok := patternTable[kind]
	if !ok {
		return Record{}, false
	}
	for _, p := range patterns {
		for _, row := range grid {
			if len(row) < 2 || !p.matches(row[0]) {
				continue
			}
			v, ok := adjacentValue(row)
			if !ok {
				// Matched label but no parseable value: drop the record,
				// never default it to zero.
				continue
			}
			rec := Record{Kind: kind, Label: strings.TrimSpace(row[0]), Value: v}
			if kind == KindRValue {
				// Prism reports R²; sign is lost, magnitude only.
				rec.Value = math.Sqrt(math.Abs(v))
				rec.Derived = true
			}
			return rec, true
		}
	}
	return Record{}, false
}

// adjacentValue returns the first parseable number to the right of the label
// column. Direct parse first; the fallback strips everything but digits,
// '.' and '-' (Prism writes decorations like "P<0.0001" or "0.5301 ***").
func adjacentValue(row []string) (float64, bool) {
	for _, cell := range row[1:] {
		s := strings.TrimSpace(cell)
		if s == "" {
			continue
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, true
		}
		stripped := stripNonNumeric(s)
		if stripped == "" {
			continue
		}
		if v, err := strconv.ParseFloat(stripped, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// readGrid loads the file into rows of cells. Prism CSVs are ragged and
// occasionally quote-sloppy, so the reader is permissive.
func readGrid(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s sheet %s: %w", path, sheets[0], err)
	}
	return rows, nil
}
