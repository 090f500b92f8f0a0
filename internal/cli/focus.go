package cli

import (
	"github.com/spf13/cobra"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

type focusFlags struct {
	boost float64
	hours int
}

var focus focusFlags

var focusCmd = &cobra.Command{
	Use:   "focus [category...]",
	Short: "Boost memories in the given categories, or show the active focus",
	RunE:  runFocus,
}

var unfocusCmd = &cobra.Command{
	Use:   "unfocus",
	Short: "End the active focus session",
	Args:  cobra.NoArgs,
	RunE:  runUnfocus,
}

func init() {
	focusCmd.Flags().Float64VarP(&focus.boost, "boost", "b", memory.DefaultBoostFactor, "Score multiplier for matching categories")
	focusCmd.Flags().IntVar(&focus.hours, "hours", memory.DefaultFocusDuration, "Session length in hours")
}

func (f focusFlags) options(categories []string) memory.FocusOptions {
	return memory.FocusOptions{
		Categories:    splitList(categories),
		BoostFactor:   f.boost,
		DurationHours: f.hours,
	}
}

func runFocus(cmd *cobra.Command, args []string) error {
	user, err := getUserID()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) > 0 {
		if _, err := a.svc.ActivateFocusMode(cmd.Context(), user, focus.options(args)); err != nil {
			return err
		}
	}
	boost, err := a.svc.ActiveBoost(cmd.Context(), user)
	if err != nil {
		return err
	}
	if boost == nil {
		return printJSON(cmd, map[string]bool{"active": false})
	}
	return printJSON(cmd, boost)
}

func runUnfocus(cmd *cobra.Command, args []string) error {
	user, err := getUserID()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.DeactivateFocusMode(cmd.Context(), user); err != nil {
		return err
	}
	return printJSON(cmd, map[string]bool{"active": false})
}
