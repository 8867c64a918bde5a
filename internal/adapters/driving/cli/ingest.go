package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// runFlags are shared by validate and ingest.
type runFlags struct {
	state       string
	fileType    string
	validOut    string
	invalidOut  string
	metricsFile string
}

var (
	validateFlags runFlags
	ingestFlags   runFlags
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a voter file without merging",
	Long: `Reads a voter file, renames its columns with the jurisdiction's aliases
and runs every record through the cleanup pipeline. Valid and invalid
records can be written as JSON lines; nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(cmd, args[0], validateFlags, false)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Validate a voter file and merge it into the entity pool",
	Long: `Validates a voter file like 'validate' and merges every valid record
into the configured entity store. Records that fail to merge are reported
as invalid with point of failure "merge".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(cmd, args[0], ingestFlags, true)
	},
}

func init() {
	for _, c := range []struct {
		cmd   *cobra.Command
		flags *runFlags
	}{
		{validateCmd, &validateFlags},
		{ingestCmd, &ingestFlags},
	} {
		c.cmd.Flags().StringVarP(&c.flags.state, "state", "s", "", "state code of the file, e.g. tx (required)")
		c.cmd.Flags().StringVarP(&c.flags.fileType, "file-type", "t", domain.FileTypeVoterFile, "configuration within the state")
		c.cmd.Flags().StringVar(&c.flags.validOut, "valid-out", "", "write valid records as JSON lines to this file")
		c.cmd.Flags().StringVar(&c.flags.invalidOut, "invalid-out", "", "write invalid records as JSON lines to this file")
		c.cmd.Flags().StringVar(&c.flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
		_ = c.cmd.MarkFlagRequired("state")
		rootCmd.AddCommand(c.cmd)
	}
}

func runFile(cmd *cobra.Command, path string, flags runFlags, merge bool) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	req := driving.IngestRequest{
		Path:         path,
		Jurisdiction: domain.Jurisdiction{State: strings.ToLower(flags.state), FileType: flags.fileType},
		Merge:        merge,
	}

	validW, closeValid, err := openJSONLines(flags.validOut)
	if err != nil {
		return err
	}
	defer closeValid()
	invalidW, closeInvalid, err := openJSONLines(flags.invalidOut)
	if err != nil {
		return err
	}
	defer closeInvalid()

	if validW != nil {
		req.OnValid = func(r domain.Record) { writeLine(validW, r) }
	}
	if invalidW != nil {
		req.OnInvalid = func(r domain.InvalidRecord) { writeLine(invalidW, r) }
	}

	report, err := withProgress(ctx, cmd, func() (*driving.IngestReport, error) {
		return ingestService.Ingest(ctx, req)
	})
	if report != nil {
		title := "Validation"
		if merge {
			title = "Ingest"
		}
		cmd.Println(renderReport(cmd.OutOrStdout(), title, report))
	}
	if flags.metricsFile != "" && metricsWriter != nil {
		if werr := metricsWriter.WriteTextfile(flags.metricsFile); werr != nil {
			logger.Warn("writing metrics: %v", werr)
		}
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name(), err)
	}
	return nil
}

// withProgress runs fn, printing the running count on a terminal.
func withProgress(
	ctx context.Context,
	cmd *cobra.Command,
	fn func() (*driving.IngestReport, error),
) (*driving.IngestReport, error) {
	if !isTerminal(cmd.ErrOrStderr()) {
		return fn()
	}

	type result struct {
		report *driving.IngestReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		r, err := fn()
		done <- result{r, err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var last int64
	cancelled := ctx.Done()
	for {
		select {
		case r := <-done:
			if last > 0 {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			return r.report, r.err
		case <-ticker.C:
			status := ingestService.Status()
			if status.Running && status.Counts.Total > last {
				last = status.Counts.Total
				fmt.Fprintf(cmd.ErrOrStderr(), "\rProcessing... %d records (%d invalid, %d merged)",
					status.Counts.Total, status.Counts.Invalid, status.Merged)
			}
		case <-cancelled:
			// The service drains in-flight records before returning.
			fmt.Fprint(cmd.ErrOrStderr(), "\nStopping, finishing records in flight...")
			cancelled = nil
		}
	}
}

// jsonLines writes one JSON value per line.
type jsonLines struct {
	enc *json.Encoder
}

func openJSONLines(path string) (*jsonLines, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	var w io.WriteCloser
	if path == "-" {
		w = nopCloser{os.Stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("creating %s: %w", path, err)
		}
		w = f
	}
	return &jsonLines{enc: json.NewEncoder(w)}, func() { _ = w.Close() }, nil
}

func writeLine(w *jsonLines, v any) {
	if err := w.enc.Encode(v); err != nil {
		logger.Warn("writing output: %v", err)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
