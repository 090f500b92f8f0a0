package cli

import (
	"github.com/spf13/cobra"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

var modeCmd = &cobra.Command{
	Use:   "mode [persistent|humanized]",
	Short: "Show or set the user's memory mode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMode,
}

func runMode(cmd *cobra.Command, args []string) error {
	user, err := getUserID()
	if err != nil {
		return err
	}
	var next memory.Mode
	if len(args) == 1 {
		if next, err = memory.ParseMode(args[0]); err != nil {
			return err
		}
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if next != "" {
		if err := a.svc.ToggleMemoryMode(cmd.Context(), user, next); err != nil {
			return err
		}
	}
	mode, err := a.svc.GetMemoryMode(cmd.Context(), user)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]string{"mode": string(mode)})
}
