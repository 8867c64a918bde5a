package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

var keyFingerprint bool

var keyCmd = &cobra.Command{
	Use:   "key <value>...",
	Short: "Print the static key of a value",
	Long: `Prints the deterministic key vepctl derives for a value, for checking
identity keys by hand. Arguments are joined with spaces.

With --fingerprint the raw-record fingerprint is printed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKey,
}

func init() {
	keyCmd.Flags().BoolVar(&keyFingerprint, "fingerprint", false, "print the record fingerprint digest")
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	value := strings.Join(args, " ")
	if keyFingerprint {
		cmd.Println(keygen.Fingerprint(value))
		return nil
	}

	key, err := keygen.StaticKey(value)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	cmd.Println(key)
	return nil
}
