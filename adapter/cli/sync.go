package cli

import (
	"errors"
	"fmt"
	"time"

	billingDomain "github.com/felixgeelhaar/subtrack/internal/billing/domain"
	calendarApp "github.com/felixgeelhaar/subtrack/internal/calendar/application"
	caldavSync "github.com/felixgeelhaar/subtrack/internal/calendar/infrastructure/caldav"
	"github.com/spf13/cobra"
)

var (
	syncMonths        int
	syncDeleteMissing bool
	syncCalendarPath  string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync renewal dates to external calendar",
	Long: `Push upcoming renewal dates to a CalDAV calendar as all-day events.

Examples:
  subtrack sync
  subtrack sync --months 6 --delete-missing
  subtrack sync --calendar /calendars/user/subscriptions/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.SubscriptionRepo == nil {
			return errors.New("sync requires database connection")
		}
		if app.CalendarSyncer == nil {
			return errors.New("calendar sync not configured")
		}

		if app.BillingService != nil {
			ok, err := app.BillingService.HasEntitlement(cmd.Context(), app.CurrentUserID, billingDomain.FeatureCalendarExport)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Calendar export is a premium feature.")
				fmt.Println("Unlock it with: subtrack billing grant --feature calendar-export")
				return nil
			}
		}

		subs, err := app.SubscriptionRepo.FindByUserID(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return err
		}

		events := calendarApp.PlanRenewals(subs, time.Now(), syncMonths)
		if len(events) == 0 {
			fmt.Println("No upcoming renewals to sync.")
			return nil
		}

		syncer := app.CalendarSyncer
		if caldavSyncer, ok := syncer.(*caldavSync.Syncer); ok {
			if syncDeleteMissing {
				caldavSyncer = caldavSyncer.WithDeleteMissing(true)
			}
			if syncCalendarPath != "" {
				caldavSyncer = caldavSyncer.WithCalendarPath(syncCalendarPath)
			}
			syncer = caldavSyncer
		}

		result, err := syncer.Sync(cmd.Context(), app.CurrentUserID, events)
		if err != nil {
			return err
		}

		fmt.Printf("Synced renewals: created=%d updated=%d deleted=%d failed=%d\n",
			result.Created, result.Updated, result.Deleted, result.Failed)
		return nil
	},
}

var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List calendars on the sync server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.CalendarSyncer == nil {
			return errors.New("calendar sync not configured")
		}

		caldavSyncer, ok := app.CalendarSyncer.(*caldavSync.Syncer)
		if !ok {
			return errors.New("configured syncer does not list calendars")
		}

		calendars, err := caldavSyncer.ListCalendars(cmd.Context())
		if err != nil {
			return err
		}

		for _, cal := range calendars {
			marker := " "
			if cal.Primary {
				marker = "*"
			}
			fmt.Printf("%s %s (%s)\n", marker, cal.Name, cal.ID)
		}

		return nil
	},
}

func init() {
	syncCmd.Flags().IntVarP(&syncMonths, "months", "m", 0, "projection horizon in months (default 12)")
	syncCmd.Flags().BoolVar(&syncDeleteMissing, "delete-missing", false, "delete remote events missing from this sync set")
	syncCmd.Flags().StringVar(&syncCalendarPath, "calendar", "", "calendar path to sync to (default: first calendar)")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(calendarsCmd)
}
