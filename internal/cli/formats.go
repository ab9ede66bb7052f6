package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"docmorph/internal/catalog"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [file-or-extension]",
	Short: "List supported conversion formats",
	Long: `Without arguments, lists every input format the service accepts.
With a file name or extension, lists the output formats available for it.

Examples:
  docmorph formats
  docmorph formats report.docx
  docmorph formats pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		cmd.Println("Supported input formats:")
		for _, ext := range catalog.SupportedInputs() {
			cmd.Printf("  %-6s %s\n", ext, catalog.Label(ext))
		}
		return nil
	}

	ext := catalog.NormalizeExt(args[0])
	if e := catalog.ExtOf(args[0]); e != "" {
		ext = e
	}

	targets := catalog.ValidTargets(ext)
	if len(targets) == 0 {
		return fmt.Errorf("no conversions available for %q files", ext)
	}

	cmd.Printf("%s converts to:\n", catalog.Label(ext))
	for _, t := range targets {
		cmd.Printf("  %-6s %s\n", t.Value, t.Label)
	}
	return nil
}
