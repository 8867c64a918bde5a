package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Inspect jurisdiction field aliases",
}

var fieldsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured jurisdictions",
	RunE:  runFieldsList,
}

var fieldsShowCmd = &cobra.Command{
	Use:   "show <state> [file-type]",
	Short: "Show the aliases of one jurisdiction",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFieldsShow,
}

func init() {
	fieldsCmd.AddCommand(fieldsListCmd)
	fieldsCmd.AddCommand(fieldsShowCmd)
	rootCmd.AddCommand(fieldsCmd)
}

func runFieldsList(cmd *cobra.Command, _ []string) error {
	if jurisdictionService == nil {
		return errors.New("jurisdiction service not configured")
	}

	list, err := jurisdictionService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list jurisdictions: %w", err)
	}
	if len(list) == 0 {
		cmd.Println("No jurisdictions configured.")
		return nil
	}
	for _, j := range list {
		cmd.Printf("%s\t%s\n", j.State, j.FileType)
	}
	return nil
}

func runFieldsShow(cmd *cobra.Command, args []string) error {
	if jurisdictionService == nil {
		return errors.New("jurisdiction service not configured")
	}

	j := domain.Jurisdiction{State: strings.ToLower(args[0]), FileType: domain.FileTypeVoterFile}
	if len(args) > 1 {
		j.FileType = args[1]
	}

	cfg, err := jurisdictionService.Describe(cmd.Context(), j)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no aliases for %s/%s", j.State, j.FileType)
	}
	if err != nil {
		return fmt.Errorf("failed to load aliases: %w", err)
	}

	cmd.Printf("%s/%s\n\n", cfg.Jurisdiction.State, cfg.Jurisdiction.FileType)
	cmd.Println("[Settings]")
	cmd.Printf("  State: %s", cfg.Settings.StateAbbreviation)
	if cfg.Settings.StateName != "" {
		cmd.Printf(" (%s)", cfg.Settings.StateName)
	}
	cmd.Println()
	if len(cfg.DateFormats) > 0 {
		cmd.Printf("  Date formats: %s\n", strings.Join(cfg.DateFormats, ", "))
	}
	cmd.Println()

	cmd.Println("[Fields]")
	names := make([]string, 0, len(cfg.Fields))
	for name := range cfg.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("  %s = %s\n", name, strings.Join(cfg.Fields[name], ", "))
	}
	return nil
}
