package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// exportPageSize is how many records are read from the store at a time.
const exportPageSize = 1000

var (
	exportFormat string
	exportOut    string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect the merged entity pool",
}

var recordsGetCmd = &cobra.Command{
	Use:   "get <record-id>",
	Short: "Show a merged record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsGet,
}

var recordsCountsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show pooled entity counts by kind",
	RunE:  runRecordsCounts,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score turnout for every merged record",
	Long: `Scores each merged record's vote history against the accumulated
election roster and stores the result on the record.`,
	RunE: runScore,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export merged records",
	Long: `Writes every merged record, flattened to columns for csv or in full
for jsonl.`,
	RunE: runExport,
}

func init() {
	recordsCmd.AddCommand(recordsGetCmd)
	recordsCmd.AddCommand(recordsCountsCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(scoreCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv or jsonl")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runRecordsGet(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	rec, err := recordService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("record not found: %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func runRecordsCounts(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	counts, err := recordService.Counts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count entities: %w", err)
	}

	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, k := range kinds {
		cmd.Printf("%-16s %d\n", k, counts[k])
	}
	return nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	n, err := recordService.ScoreTurnout(cmd.Context())
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}
	cmd.Printf("Scored turnout for %d records.\n", n)
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	if exportFormat != "csv" && exportFormat != "jsonl" {
		return fmt.Errorf("unknown format %q: use csv or jsonl", exportFormat)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "-" && exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	var records []domain.Record
	after := ""
	for {
		page, err := recordService.List(cmd.Context(), after, exportPageSize)
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		records = append(records, page...)
		if len(page) < exportPageSize {
			break
		}
		after = page[len(page)-1].ID
	}

	if exportFormat == "jsonl" {
		enc := json.NewEncoder(w)
		for i := range records {
			if err := enc.Encode(&records[i]); err != nil {
				return fmt.Errorf("writing record: %w", err)
			}
		}
		return nil
	}
	return writeFlatCSV(w, records)
}

// writeFlatCSV writes records as CSV with the union of their columns.
func writeFlatCSV(w io.Writer, records []domain.Record) error {
	rows := make([]map[string]string, len(records))
	seen := map[string]bool{}
	for i := range records {
		rows[i] = records[i].Flatten()
		for k := range rows[i] {
			seen[k] = true
		}
	}
	delete(seen, "record_id")

	header := make([]string, 0, len(seen)+1)
	for k := range seen {
		header = append(header, k)
	}
	slices.Sort(header)
	header = append([]string{"record_id"}, header...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	line := make([]string, len(header))
	for i, row := range rows {
		line[0] = records[i].ID
		for j, col := range header[1:] {
			line[j+1] = row[col]
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
