// Package cli provides the vepctl command line interface.
//
// Commands talk to the core through driving ports only. The services are
// wired by cmd/vepctl and injected with SetServices before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// MetricsWriter dumps collected metrics for the textfile collector.
type MetricsWriter interface {
	WriteTextfile(path string) error
}

// Services holds the driving ports the commands use. Nil entries disable
// the commands that need them.
type Services struct {
	Ingest       driving.IngestService
	Records      driving.RecordService
	Jurisdiction driving.JurisdictionService
	Settings     driving.SettingsService
	Metrics      MetricsWriter
}

var (
	ingestService       driving.IngestService
	recordService       driving.RecordService
	jurisdictionService driving.JurisdictionService
	settingsService     driving.SettingsService
	metricsWriter       MetricsWriter
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vepctl",
	Short: "Validate and merge voter files",
	Long: `vepctl cleans voter registration files, validates each record against
its jurisdiction's field aliases and merges valid records into a shared
entity pool keyed by the VEP matching keys.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	recordService = s.Records
	jurisdictionService = s.Jurisdiction
	settingsService = s.Settings
	metricsWriter = s.Metrics
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
