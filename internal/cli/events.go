package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var eventsUser bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail memory events from the Redis stream",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().BoolVar(&eventsUser, "mine", false, "Only show events for --user")
}

func runEvents(cmd *cobra.Command, args []string) error {
	var user string
	if eventsUser {
		var err error
		if user, err = getUserID(); err != nil {
			return err
		}
	}
	a, err := openBase()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.openRedis(cmd.Context()); err != nil {
		return err
	}
	if a.stream == nil {
		return fmt.Errorf("events need database.redis.url")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for ev := range a.stream.Subscribe(cmd.Context()) {
		if user != "" && ev.UserID != user {
			continue
		}
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}
