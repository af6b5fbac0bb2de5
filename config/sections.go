package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/kilianp07/arbitrage/core/ingest"
	"github.com/kilianp07/arbitrage/pkg/export"
)

// InputConfig locates the price series.
type InputConfig struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	// Delimiter, Column and HeaderRows only apply to the raw format.
	Delimiter  string `json:"delimiter"`
	Column     int    `json:"column"`
	HeaderRows int    `json:"header_rows"`
}

// SetDefaults reads normalised price files with the day-ahead raw layout.
func (c *InputConfig) SetDefaults() {
	d := ingest.DefaultExtractOptions()
	if c.Format == "" {
		c.Format = ingest.FormatPrices
	}
	if c.Delimiter == "" {
		c.Delimiter = string(d.Delimiter)
	}
	if c.Column == 0 {
		c.Column = d.Column
	}
}

// Validate checks the format and raw layout.
func (c InputConfig) Validate() error {
	if c.Format != ingest.FormatPrices && c.Format != ingest.FormatRaw {
		return fmt.Errorf("input: unknown format %s", c.Format)
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("input: delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.Column < 0 || c.HeaderRows < 0 {
		return fmt.Errorf("input: column and header_rows must be >= 0")
	}
	return nil
}

// ExtractOptions converts the raw layout settings.
func (c InputConfig) ExtractOptions() ExtractOptions {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return ExtractOptions{Delimiter: r, Column: c.Column, HeaderRows: c.HeaderRows}
}

// ExtractOptions aliases the ingest options so callers need not import
// ingest to read the configuration.
type ExtractOptions = ingest.ExtractOptions

// ReportConfig controls where the trading report is written.
type ReportConfig struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// SetDefaults writes a CSV report to output/tradingStrategy.csv.
func (c *ReportConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = export.FormatCSV
	}
	if c.Path == "" {
		c.Path = "output/tradingStrategy." + c.Format
	}
}

// Validate checks the report format.
func (c ReportConfig) Validate() error {
	if c.Format != export.FormatCSV && c.Format != export.FormatJSON {
		return fmt.Errorf("report: unknown format %s", c.Format)
	}
	return nil
}

// RunConfig controls window level parallelism and reproducibility.
type RunConfig struct {
	// Workers bounds the number of windows optimised at once; 0 uses
	// GOMAXPROCS.
	Workers int `json:"workers"`
	// Seed makes a run reproducible. Nil draws a random base seed.
	Seed *uint64 `json:"seed"`
}

// Validate checks mandatory fields.
func (c RunConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("run: workers must be >= 0, got %d", c.Workers)
	}
	return nil
}
