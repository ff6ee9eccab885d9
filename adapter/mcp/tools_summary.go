package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	searchDomain "github.com/felixgeelhaar/subtrack/internal/search/domain"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
)

type summaryInput struct {
	HorizonMonths int `json:"horizon_months,omitempty"`
}

type upcomingInput struct {
	WindowDays int `json:"window_days,omitempty"`
}

type searchInput struct {
	Query string `json:"query" jsonschema:"required"`
}

func registerSummaryTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("summary.get").
		Description("Get the spending summary across active subscriptions").
		Handler(func(ctx context.Context, input summaryInput) (*queries.SummaryDTO, error) {
			if app == nil || app.GetSummaryHandler == nil {
				return nil, errors.New("summary requires database connection")
			}
			return app.GetSummaryHandler.Handle(ctx, queries.GetSummaryQuery{
				UserID:        app.CurrentUserID,
				HorizonMonths: input.HorizonMonths,
			})
		})

	srv.Tool("renewals.upcoming").
		Description("List charges due within the upcoming window").
		Handler(func(ctx context.Context, input upcomingInput) ([]queries.UpcomingChargeDTO, error) {
			if app == nil || app.GetSummaryHandler == nil {
				return nil, errors.New("upcoming renewals require database connection")
			}
			summary, err := app.GetSummaryHandler.Handle(ctx, queries.GetSummaryQuery{
				UserID:     app.CurrentUserID,
				WindowDays: input.WindowDays,
			})
			if err != nil {
				return nil, err
			}
			return summary.Upcoming, nil
		})

	srv.Tool("subscription.search").
		Description("Search subscriptions by name, category, cycle, or currency").
		Handler(func(ctx context.Context, input searchInput) ([]searchDomain.Entry, error) {
			if app == nil || app.SearchIndexer == nil {
				return nil, errors.New("search requires database connection")
			}
			if input.Query == "" {
				return nil, errors.New("query is required")
			}
			return app.SearchIndexer.Search(ctx, app.CurrentUserID, input.Query)
		})

	return nil
}
