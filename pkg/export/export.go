// Package export renders optimisation results as CSV or JSON reports.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/kilianp07/arbitrage/core/model"
)

// Report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ReportRow is one line of the CSV trading report. Summary rows carry their
// label in Price and their value in Action.
type ReportRow struct {
	Window        string `csv:"Window"`
	Price         string `csv:"Price"`
	Action        string `csv:"Action"`
	Capacity      string `csv:"Capacity"`
	CurrentProfit string `csv:"Current Profit"`
}

// BuildReport flattens window results into report rows. Each successful
// window contributes its totals followed by one row per slot; a failed
// window contributes a single Error row. The last row sums the profit of all
// successful windows.
func BuildReport(results []model.WindowResult) []ReportRow {
	rows := make([]ReportRow, 0, reportSize(results))
	total := 0.0
	for _, res := range results {
		label := fmt.Sprintf("Window %d", res.Index+1)
		if res.Failed() {
			rows = append(rows, ReportRow{Window: label, Price: "Error", Action: res.Err})
			continue
		}
		total += res.Profit
		rows = append(rows,
			ReportRow{Window: label, Price: "Total Profit", Action: formatFloat(res.Profit)},
			ReportRow{Window: label, Price: "Number of Buys", Action: strconv.Itoa(res.Buys)},
			ReportRow{Window: label, Price: "Number of Sells", Action: strconv.Itoa(res.Sells)},
		)
		for _, slot := range res.Transcript {
			rows = append(rows, ReportRow{
				Window:        label,
				Price:         formatFloat(slot.Price),
				Action:        slot.Action.String(),
				Capacity:      formatFloat(slot.Capacity) + "%",
				CurrentProfit: formatFloat(slot.Profit),
			})
		}
	}
	return append(rows, ReportRow{Window: "All", Price: "Total Profit", Action: formatFloat(total)})
}

func reportSize(results []model.WindowResult) int {
	n := 1
	for _, r := range results {
		n += 3 + len(r.Transcript)
	}
	return n
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes the trading report with a header row.
func WriteCSV(w io.Writer, results []model.WindowResult) error {
	return gocsv.Marshal(BuildReport(results), w)
}

// WriteJSON writes the window results as an indented JSON array.
func WriteJSON(w io.Writer, results []model.WindowResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []model.WindowResult{}
	}
	return enc.Encode(results)
}

// WriteFile writes the report to path in the requested format, creating the
// parent directory when needed.
func WriteFile(path, format string, results []model.WindowResult) (err error) {
	var write func(io.Writer, []model.WindowResult) error
	switch format {
	case FormatCSV, "":
		write = WriteCSV
	case FormatJSON:
		write = WriteJSON
	default:
		return fmt.Errorf("export: unknown report format %q", format)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f, results)
}
