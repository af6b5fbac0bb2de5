// Package ingest reads spot price series from normalised price files and
// from raw delimited market exports.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/arbitrage/core/model"
)

// ErrMalformedInput is wrapped by every record-level parsing failure.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError names the offending record.
type MalformedInputError struct {
	Line   int
	Record string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at line %d (%q): %s", e.Line, e.Record, e.Reason)
}

// Unwrap allows errors.Is(err, ErrMalformedInput).
func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

// Supported input formats.
const (
	FormatPrices = "prices"
	FormatRaw    = "raw"
)

// ExtractOptions describes a raw delimited export.
type ExtractOptions struct {
	Delimiter  rune
	Column     int
	HeaderRows int
}

// DefaultExtractOptions matches the day-ahead exports: semicolon separated,
// price in the third column, no header.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{Delimiter: ';', Column: 2}
}

// ParsePrice parses a price written with either a decimal point or a
// decimal comma. When a comma is present, points and spaces are treated as
// thousands separators.
func ParsePrice(field string) (float64, error) {
	f := strings.TrimSpace(strings.TrimPrefix(field, "\ufeff"))
	if strings.Contains(f, ",") {
		f = strings.NewReplacer(".", "", " ", "", "\u00a0", "").Replace(f)
		f = strings.Replace(f, ",", ".", 1)
	}
	d, err := decimal.NewFromString(f)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ReadPrices reads one price per line. Blank lines are gaps in the series and
// are rejected like any other unparsable record.
func ReadPrices(r io.Reader) (model.PriceSeries, error) {
	var prices model.PriceSeries
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		if strings.TrimSpace(raw) == "" {
			return nil, &MalformedInputError{Line: line, Record: raw, Reason: "empty record"}
		}
		p, err := ParsePrice(raw)
		if err != nil {
			return nil, &MalformedInputError{Line: line, Record: raw, Reason: err.Error()}
		}
		prices = append(prices, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}
	return prices, nil
}

// Extract reads the price column of a raw delimited export. A record too
// short to contain the column is rejected rather than padded.
func Extract(r io.Reader, opts ExtractOptions) (model.PriceSeries, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	if opts.Column < 0 {
		return nil, fmt.Errorf("column must be >= 0, got %d", opts.Column)
	}
	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var prices model.PriceSeries
	for n := 0; ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		if n < opts.HeaderRows {
			continue
		}
		line, _ := cr.FieldPos(0)
		joined := strings.Join(rec, string(opts.Delimiter))
		if len(rec) <= opts.Column {
			return nil, &MalformedInputError{Line: line, Record: joined, Reason: fmt.Sprintf("%d fields, price column %d missing", len(rec), opts.Column)}
		}
		p, err := ParsePrice(rec[opts.Column])
		if err != nil {
			return nil, &MalformedInputError{Line: line, Record: joined, Reason: err.Error()}
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// WritePrices writes the series one price per line with a decimal point.
func WritePrices(w io.Writer, prices model.PriceSeries) error {
	bw := bufio.NewWriter(w)
	for _, p := range prices {
		if _, err := bw.WriteString(strconv.FormatFloat(p, 'f', -1, 64) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load opens path and parses it according to format.
func Load(path, format string, opts ExtractOptions) (model.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(format) {
	case FormatPrices, "":
		return ReadPrices(f)
	case FormatRaw:
		return Extract(f, opts)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}
