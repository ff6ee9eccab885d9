package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendarApp "github.com/felixgeelhaar/subtrack/internal/calendar/application"
	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// Custom property marking events this tool manages.
const PropXSubtrack = "X-SUBTRACK"

// Syncer pushes renewal events to a CalDAV calendar (Apple Calendar,
// Fastmail, Nextcloud, etc.) as all-day events.
type Syncer struct {
	baseURL       string
	username      string
	password      string // App-specific password for Apple
	calendarPath  string // Specific calendar path, or empty for default
	logger        *slog.Logger
	deleteMissing bool
	now           func() time.Time
}

// NewSyncer creates a CalDAV calendar syncer.
func NewSyncer(baseURL, username, password string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		baseURL:       baseURL,
		username:      username,
		password:      password,
		logger:        logger,
		deleteMissing: false,
		now:           time.Now,
	}
}

// WithDeleteMissing enables deletion of events missing from the current sync set.
func (s *Syncer) WithDeleteMissing(enabled bool) *Syncer {
	s.deleteMissing = enabled
	return s
}

// WithCalendarPath sets the specific calendar path to use.
func (s *Syncer) WithCalendarPath(path string) *Syncer {
	s.calendarPath = path
	return s
}

// Sync pushes renewal events into the CalDAV calendar. Events are addressed
// by subscription and charge month, so re-syncing after a date change
// replaces the old entry.
func (s *Syncer) Sync(ctx context.Context, userID uuid.UUID, events []calendarApp.RenewalEvent) (*calendarApp.SyncResult, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	result := &calendarApp.SyncResult{}
	keepPaths := make(map[string]struct{}, len(events))

	for _, event := range events {
		eventPath := fmt.Sprintf("%s%s-%s.ics", calPath, event.SubscriptionID.String(), event.ChargeDate.Format("200601"))
		keepPaths[eventPath] = struct{}{}

		cal := s.toICalendar(event)
		updated, err := s.upsertEvent(ctx, client, eventPath, cal)
		if err != nil {
			s.logger.Warn("caldav sync failed", "event_path", eventPath, "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if s.deleteMissing {
		deleted, err := s.deleteMissingEvents(ctx, client, calPath, keepPaths)
		if err != nil {
			s.logger.Warn("caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	return result, nil
}

// ListCalendars returns calendars accessible to the user.
func (s *Syncer) ListCalendars(ctx context.Context) ([]calendarApp.Calendar, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}

	calendars := make([]calendarApp.Calendar, 0, len(cals))
	for i, cal := range cals {
		calendars = append(calendars, calendarApp.Calendar{
			ID:      cal.Path,
			Name:    cal.Name,
			Primary: i == 0, // First calendar is usually the default
		})
	}
	return calendars, nil
}

func (s *Syncer) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, s.username, s.password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *Syncer) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.calendarPath != "" {
		return s.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	// Use first calendar as default
	return cals[0].Path, nil
}

func (s *Syncer) upsertEvent(ctx context.Context, client *caldav.Client, eventPath string, cal *ical.Calendar) (bool, error) {
	// Check if event exists first
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	// Put the event (creates or updates)
	_, err = client.PutCalendarObject(ctx, eventPath, cal)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (s *Syncer) deleteMissingEvents(ctx context.Context, client *caldav.Client, calPath string, keepPaths map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"UID", PropXSubtrack},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{Name: "VEVENT"},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if !isSubtrackEvent(&obj) {
			continue
		}

		if _, ok := keepPaths[obj.Path]; ok {
			continue
		}

		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			s.logger.Warn("failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

// isSubtrackEvent checks if a calendar object has the X-SUBTRACK property set.
func isSubtrackEvent(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}

	for _, child := range obj.Data.Children {
		if child.Name == ical.CompEvent {
			if props := child.Props[PropXSubtrack]; len(props) > 0 {
				if props[0].Value == "1" {
					return true
				}
			}
		}
	}

	return false
}

// toICalendar converts a renewal event to an all-day ical.Calendar.
func (s *Syncer) toICalendar(renewal calendarApp.RenewalEvent) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//SubTrack//Calendar Sync//EN")

	day := renewal.ChargeDate.UTC().Truncate(24 * time.Hour)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s", renewal.SubscriptionID.String(), day.Format("200601")))
	event.Props.SetDateTime(ical.PropDateTimeStamp, s.now().UTC())
	event.Props.SetDate(ical.PropDateTimeStart, day)
	event.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s renewal", renewal.Title))
	event.Props.SetText(ical.PropDescription,
		fmt.Sprintf("%.2f %s\n\nManaged by SubTrack", renewal.Amount, renewal.Currency))

	subtrackProp := ical.NewProp(PropXSubtrack)
	subtrackProp.Value = "1"
	event.Props[PropXSubtrack] = []ical.Prop{*subtrackProp}

	cal.Children = append(cal.Children, event.Component)

	return cal
}
