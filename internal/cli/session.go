package cli

import (
	"time"

	"github.com/spf13/cobra"

	apperrors "docmorph/pkg/errors"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage the conversion session",
	Long: `The session identifier correlates this profile's uploads and converted
artifacts on the service. It is created on first use and kept until
reset or replaced.`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the session identifier and its server-side files",
	RunE:  runSessionShow,
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard server-side files and start a fresh session",
	RunE:  runSessionReset,
}

var sessionAdoptCmd = &cobra.Command{
	Use:   "adopt [session-id]",
	Short: "Adopt a session identifier from a shared link",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionAdopt,
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd, sessionResetCmd, sessionAdoptCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	id, err := container.Identity.GetOrCreate()
	if err != nil {
		return err
	}
	cmd.Printf("Session: %s\n", id)

	info, err := container.Backend.SessionInfo(cmd.Context(), id)
	if err != nil {
		// A session unknown to the service simply has no files yet.
		if apperrors.StatusOf(err) == 404 {
			cmd.Println("No files on the service")
			return nil
		}
		return err
	}

	if len(info.Files) == 0 {
		cmd.Println("No files on the service")
		return nil
	}
	cmd.Printf("Files (%d):\n", len(info.Files))
	for _, f := range info.Files {
		cmd.Printf("  %-30s %8d bytes  %s\n", f.Name, f.Size, f.Type)
	}
	if info.ExpiresAt > 0 {
		cmd.Printf("Expires: %s\n", time.Unix(int64(info.ExpiresAt), 0).Format(time.RFC1123))
	}
	return nil
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	id, err := container.Identity.GetOrCreate()
	if err != nil {
		return err
	}

	removed, err := container.Backend.ResetSession(cmd.Context(), id)
	if err != nil && apperrors.StatusOf(err) != 404 {
		return err
	}

	if err := container.Identity.Reset(); err != nil {
		return err
	}
	container.Orchestrator.Reset()

	newID, err := container.Identity.GetOrCreate()
	if err != nil {
		return err
	}
	cmd.Printf("Removed %d file(s). New session: %s\n", removed, newID)
	return nil
}

func runSessionAdopt(cmd *cobra.Command, args []string) error {
	id, err := container.Identity.AdoptFromLink(args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Adopted session %s\n", id)
	return nil
}
