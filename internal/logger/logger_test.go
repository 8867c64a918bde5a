package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// capture routes log output to a buffer for the duration of the test.
func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Fatal("expected quiet logger")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Fatal("expected verbose logger")
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("row %d skipped", 7) }, "[DEBUG] row 7 skipped\n"},
		{"debug quiet", false, func() { Debug("row %d skipped", 7) }, ""},
		{"info verbose", true, func() { Info("loaded %s", "tx/voterfile") }, "[INFO] loaded tx/voterfile\n"},
		{"info quiet", false, func() { Info("loaded %s", "tx/voterfile") }, ""},
		{"warn verbose", true, func() { Warn("store unavailable") }, "[WARN] store unavailable\n"},
		{"warn quiet", false, func() { Warn("store unavailable") }, ""},
		{"error quiet", false, func() { Error("merge failed: %s", "conflict") }, "[ERROR] merge failed: conflict\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Merge")
	if got := buf.String(); got != "\n=== Merge ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}

	buf.Reset()
	SetVerbose(false)
	Section("Merge")
	if buf.Len() > 0 {
		t.Errorf("section printed while quiet: %q", buf.String())
	}
}

func TestWith(t *testing.T) {
	buf := capture(t, true)

	With("source", "tx.csv").Infof("validated %d records", 3)

	output := buf.String()
	if !strings.HasPrefix(output, "[INFO] validated 3 records") {
		t.Errorf("unexpected with output: %q", output)
	}
	if !strings.Contains(output, `"source": "tx.csv"`) {
		t.Errorf("expected context field in output: %q", output)
	}
}
