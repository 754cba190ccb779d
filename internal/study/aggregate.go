package study

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// AggregateRow is one row of the study-level results table: the framework's
// per-experiment roll-up of the headline metrics.
type AggregateRow struct {
	Experiment string
	Strategy   MappingStrategy
	GroupSize  int
	MeanMRR    float64
	MeanTop1   float64
	MeanTop3   float64
}

// LoadAggregateResults reads the study-level aggregate results CSV
// (one row per experiment; columns experiment, mapping_strategy, k,
// mean_mrr, mean_top_1_acc, mean_top_3_acc in any order).
func LoadAggregateResults(path string) ([]AggregateRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"experiment", "mapping_strategy", "k", "mean_mrr", "mean_top_1_acc", "mean_top_3_acc"} {
		if _, ok := col[want]; !ok {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("missing column %q", want)}
		}
	}

	var rows []AggregateRow
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("line %d: %w", line, err)}
		}
		row := AggregateRow{
			Experiment: strings.TrimSpace(rec[col["experiment"]]),
			Strategy:   MappingStrategy(strings.TrimSpace(rec[col["mapping_strategy"]])),
		}
		if row.GroupSize, err = strconv.Atoi(strings.TrimSpace(rec[col["k"]])); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("line %d: k: %w", line, err)}
		}
		if row.MeanMRR, err = parseFloat(rec[col["mean_mrr"]]); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("line %d: mean_mrr: %w", line, err)}
		}
		if row.MeanTop1, err = parseFloat(rec[col["mean_top_1_acc"]]); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("line %d: mean_top_1_acc: %w", line, err)}
		}
		if row.MeanTop3, err = parseFloat(rec[col["mean_top_3_acc"]]); err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("line %d: mean_top_3_acc: %w", line, err)}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
