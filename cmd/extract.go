package cmd

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kilianp07/arbitrage/core/ingest"
)

var extractFlags struct {
	in         string
	out        string
	column     int
	delimiter  string
	headerRows int
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the price column of a raw delimited export into a one-price-per-line file",
	RunE:  runExtract,
}

func init() {
	d := ingest.DefaultExtractOptions()
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.in, "in", "", "raw export to read")
	f.StringVar(&extractFlags.out, "out", "", "price file to write, stdout when empty")
	f.IntVar(&extractFlags.column, "column", d.Column, "zero-based price column")
	f.StringVar(&extractFlags.delimiter, "delimiter", string(d.Delimiter), "field delimiter")
	f.IntVar(&extractFlags.headerRows, "header-rows", d.HeaderRows, "leading rows to skip")
	_ = extractCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) (err error) {
	if utf8.RuneCountInString(extractFlags.delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", extractFlags.delimiter)
	}
	delim, _ := utf8.DecodeRuneInString(extractFlags.delimiter)
	opts := ingest.ExtractOptions{Delimiter: delim, Column: extractFlags.column, HeaderRows: extractFlags.headerRows}

	prices, err := ingest.Load(extractFlags.in, ingest.FormatRaw, opts)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if extractFlags.out != "" {
		f, err := os.Create(extractFlags.out)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if err := ingest.WritePrices(w, prices); err != nil {
		return err
	}
	if extractFlags.out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "extracted %d prices to %s\n", len(prices), extractFlags.out)
	}
	return nil
}
