package reminder

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/spf13/cobra"
)

var (
	listDays  int
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled reminders",
	Long: `List reminders scheduled to fire within the given number of days,
soonest first.

Examples:
  subtrack reminder list            # Next 30 days
  subtrack reminder list --days 7`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ReminderRepo == nil {
			fmt.Println("Reminder listing requires database connection.")
			return nil
		}

		before := time.Now().AddDate(0, 0, listDays)
		reminders, err := app.ReminderRepo.FindDue(cmd.Context(), before, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list reminders: %w", err)
		}

		if len(reminders) == 0 {
			fmt.Printf("No reminders in the next %d days.\n", listDays)
			return nil
		}

		for _, r := range reminders {
			fmt.Printf("%s  %s  subscription %s\n",
				r.FireAt().Format("2006-01-02"),
				r.Kind(),
				r.SubscriptionID(),
			)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listDays, "days", "d", 30, "window in days")
	listCmd.Flags().IntVar(&listLimit, "limit", 100, "maximum reminders to show")
}
