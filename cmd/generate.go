package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vmsim/mem/backingstore"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create a backing store file filled with random data.",
	Long: `generate writes a backing store file holding 256 pages of 256 ` +
		`random bytes each. The simulator pages data in from this file on ` +
		`demand.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("output", "o", "BACKING_STORE.bin",
		"path of the file to create")
	generateCmd.Flags().Int64("seed", 0,
		"seed of the random content; 0 seeds from the current time")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	path, _ := cmd.Flags().GetString("output")
	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	err := backingstore.Generate(path, seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Backing store created: %s\n", path)

	return nil
}
