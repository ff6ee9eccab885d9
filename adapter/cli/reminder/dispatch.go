package reminder

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/spf13/cobra"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Deliver due reminders now",
	Long: `Deliver every reminder whose fire time has passed. Normally the
background worker does this on a schedule; this command runs one
delivery pass in the foreground.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ReminderDispatcher == nil {
			return errors.New("reminder dispatch requires database connection")
		}

		if err := app.ReminderDispatcher.DispatchOnce(cmd.Context()); err != nil {
			return fmt.Errorf("dispatch failed: %w", err)
		}

		fmt.Println("Dispatched due reminders.")
		return nil
	},
}
