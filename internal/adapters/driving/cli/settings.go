package cli

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure processing, entity store and lock settings.

Use subcommands to change single values or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting",
	Long: `Set one setting by its config key, for example:

  vepctl settings set processing.workers 8
  vepctl settings set store.driver postgres

Run 'vepctl settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable config keys",
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the entity store and locks step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Processing]")
	cmd.Printf("  Workers: %d\n", settings.Processing.Workers)
	cmd.Printf("  Strict DOB: %t\n", settings.Processing.StrictDOB)
	cmd.Printf("  Final validation: %t\n", settings.Processing.FinalValidation)
	cmd.Printf("  Preferred address: %s\n", settings.Processing.PreferAddress)
	if settings.Processing.DistrictThreshold > 0 {
		cmd.Printf("  District threshold: %d\n", settings.Processing.DistrictThreshold)
	} else {
		cmd.Printf("  District threshold: (from alias file)\n")
	}
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", settings.Store.Driver)
	if settings.Store.DSN != "" {
		cmd.Printf("  DSN: %s\n", maskDSN(settings.Store.DSN))
	}
	cmd.Println()

	cmd.Println("[Merge]")
	cmd.Printf("  Max retries: %d\n", settings.Merge.MaxRetries)
	cmd.Println()

	cmd.Println("[Lock]")
	if settings.Lock.RedisAddr != "" {
		cmd.Printf("  Redis: %s\n", settings.Lock.RedisAddr)
		cmd.Printf("  Prefix: %s\n", settings.Lock.Prefix)
	} else {
		cmd.Printf("  Redis: (not set, in-process locks)\n")
	}
	cmd.Println()

	if settings.FieldsDir != "" {
		cmd.Printf("Fields directory: %s\n\n", settings.FieldsDir)
	}

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'vepctl settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("vepctl Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Entity store
	cmd.Println("Step 1: Select Entity Store")
	cmd.Println("---------------------------")
	drivers := domain.AllStoreDrivers()
	current := 1
	for i, d := range drivers {
		if d == settings.Store.Driver {
			current = i + 1
		}
		cmd.Printf("  %d. %s\n", i+1, d)
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Store.Driver = drivers[parseChoice(readLine(reader), len(drivers), current)-1]

	if settings.Store.Driver == domain.StorePostgres {
		cmd.Print("PostgreSQL DSN: ")
		if dsn := readPassword(reader); dsn != "" {
			settings.Store.DSN = dsn
		}
		cmd.Println()
	}
	cmd.Println()

	// Step 2: Workers
	cmd.Println("Step 2: Processing")
	cmd.Println("------------------")
	cmd.Printf("Workers [%d]: ", settings.Processing.Workers)
	if n, err := strconv.Atoi(readLine(reader)); err == nil && n > 0 {
		settings.Processing.Workers = n
	}
	cmd.Println()

	// Step 3: Redis locks
	cmd.Println("Step 3: Cross-process Locks")
	cmd.Println("---------------------------")
	cmd.Println("Set a Redis address when several vepctl processes merge into one store.")
	cmd.Printf("Redis address [%s]: ", settings.Lock.RedisAddr)
	if addr := readLine(reader); addr != "" {
		if addr == "none" {
			addr = ""
		}
		settings.Lock.RedisAddr = addr
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("Settings saved.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo on a terminal and falls back to reader.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

// maskDSN hides the password of a connection URL.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	return u.Redacted()
}
