package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads and decodes a pipeline file.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}
	return p, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// named) into the process environment. Variables that are already set win.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	present := files[:0:0]
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files %v: %w", present, err)
	}
	return nil
}

// ApplyEnv overlays environment overrides onto p. getenv is usually
// os.Getenv; tests pass a map-backed func to stay hermetic.
//
// Recognized keys:
//
//	ETL_IMPORT_TIMEOUT_SECONDS  import.timeout_seconds
//	ETL_IMPORT_DATABASE         import.database
//	ETL_IMPORT_DSN              import.dsn
//	ETL_PROGRESS_EVERY          import.progress_every
//	ETL_BATCH_SIZE              batches.batch_size
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	envInt := func(k string, cur int) int {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return cur
	}
	envString := func(k, cur string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return cur
	}

	p.Import.TimeoutSeconds = envInt("ETL_IMPORT_TIMEOUT_SECONDS", p.Import.TimeoutSeconds)
	p.Import.Database = envString("ETL_IMPORT_DATABASE", p.Import.Database)
	p.Import.DSN = envString("ETL_IMPORT_DSN", p.Import.DSN)
	p.Import.ProgressEvery = envInt("ETL_PROGRESS_EVERY", p.Import.ProgressEvery)
	p.Batches.BatchSize = envInt("ETL_BATCH_SIZE", p.Batches.BatchSize)
}
