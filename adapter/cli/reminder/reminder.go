package reminder

import (
	"github.com/spf13/cobra"
)

// Cmd is the reminder command group
var Cmd = &cobra.Command{
	Use:   "reminder",
	Short: "Manage renewal reminders",
	Long:  `Inspect scheduled reminders and deliver the ones that are due.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(dispatchCmd)
}
