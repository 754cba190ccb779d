package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"prismcheck/internal/validate"
)

// loadConfig builds the effective config: file (or embedded defaults),
// then flag overrides.
func loadConfig(path string, apply func(*validate.Config)) (validate.Config, error) {
	cfg, err := validate.LoadConfig(path)
	if err != nil {
		return validate.Config{}, err
	}
	if apply != nil {
		apply(&cfg)
	}
	return cfg, nil
}

// confirmOverwrite guards the destructive export regeneration: if dir
// already holds files and force is unset, the user must confirm before the
// directory is wiped.
func confirmOverwrite(dir string, force bool, in io.Reader, out io.Writer) error {
	if force {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return nil // nothing to lose
	}
	fmt.Fprintf(out, "export directory %s holds %d files and will be wiped; continue? [y/N] ", dir, len(entries))
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return fmt.Errorf("aborted: %s left untouched (use --force to skip this prompt)", dir)
}

func applyToleranceFlags(cfg *validate.Config) {
	if validateFlags.tolMean > 0 {
		cfg.Tolerances.Mean = validateFlags.tolMean
	}
	if validateFlags.tolP > 0 {
		cfg.Tolerances.PValue = validateFlags.tolP
	}
	if validateFlags.tolF > 0 {
		cfg.Tolerances.FStatistic = validateFlags.tolF
	}
	if validateFlags.tolEta > 0 {
		cfg.Tolerances.EtaSquared = validateFlags.tolEta
	}
	if validateFlags.tolSlope > 0 {
		cfg.Tolerances.Slope = validateFlags.tolSlope
	}
	if validateFlags.tolR > 0 {
		cfg.Tolerances.RValue = validateFlags.tolR
	}
}
