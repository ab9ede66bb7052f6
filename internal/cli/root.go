// Package cli implements the docmorph command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docmorph/internal/config"
)

var (
	flagProfile string
	flagBackend string

	container *config.Container
)

var rootCmd = &cobra.Command{
	Use:   "docmorph",
	Short: "Convert documents through the docmorph conversion service",
	Long: `docmorph uploads a local file to the conversion service, asks for a
target format, and hands back a download link for the converted
artifact.

Each profile keeps its own session identifier, so conversions from
different profiles never share server-side state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; ignore its absence.
		_ = godotenv.Load()

		if flagProfile != "" {
			os.Setenv("DOCMORPH_PROFILE", flagProfile)
		}
		if flagBackend != "" {
			os.Setenv("DOCMORPH_BACKEND_URL", flagBackend)
		}

		c, err := config.NewContainer()
		if err != nil {
			return err
		}
		container = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Close()
			container = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", `state profile to use (default "default")`)
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "conversion service base URL")
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
