package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/queries"
)

type subscriptionCreateInput struct {
	Name     string  `json:"name" jsonschema:"required"`
	Amount   float64 `json:"amount" jsonschema:"required"`
	Currency string  `json:"currency,omitempty"`
	Cycle    string  `json:"cycle,omitempty"`
	Category string  `json:"category,omitempty"`
	Start    string  `json:"start,omitempty"`
	End      string  `json:"end,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

type subscriptionListInput struct {
	IncludeArchived bool   `json:"include_archived,omitempty"`
	Category        string `json:"category,omitempty"`
	SortBy          string `json:"sort_by,omitempty"`
	SortOrder       string `json:"sort_order,omitempty"`
}

type subscriptionIDInput struct {
	SubscriptionID string `json:"subscription_id" jsonschema:"required"`
}

type subscriptionEndInput struct {
	SubscriptionID string `json:"subscription_id" jsonschema:"required"`
	EndDate        string `json:"end_date,omitempty"`
}

func registerSubscriptionTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("subscription.create").
		Description("Add a new subscription to track").
		Handler(func(ctx context.Context, input subscriptionCreateInput) (*commands.CreateSubscriptionResult, error) {
			if app == nil || app.CreateSubscriptionHandler == nil {
				return nil, errors.New("subscription creation requires database connection")
			}
			if input.Name == "" {
				return nil, errors.New("name is required")
			}
			if input.Currency == "" {
				input.Currency = "USD"
			}
			if input.Cycle == "" {
				input.Cycle = "monthly"
			}

			start, err := parseDate(input.Start, time.Now())
			if err != nil {
				return nil, err
			}
			var end *time.Time
			if input.End != "" {
				parsed, err := parseDate(input.End, time.Time{})
				if err != nil {
					return nil, err
				}
				end = &parsed
			}

			return app.CreateSubscriptionHandler.Handle(ctx, commands.CreateSubscriptionCommand{
				UserID:        app.CurrentUserID,
				Name:          input.Name,
				Amount:        input.Amount,
				Currency:      input.Currency,
				Cycle:         input.Cycle,
				Category:      input.Category,
				ReferenceDate: start,
				EndDate:       end,
				Notes:         input.Notes,
			})
		})

	srv.Tool("subscription.list").
		Description("List subscriptions with next charge dates and monthly costs").
		Handler(func(ctx context.Context, input subscriptionListInput) ([]queries.SubscriptionDTO, error) {
			if app == nil || app.ListSubscriptionsHandler == nil {
				return nil, errors.New("subscription listing requires database connection")
			}
			return app.ListSubscriptionsHandler.Handle(ctx, queries.ListSubscriptionsQuery{
				UserID:          app.CurrentUserID,
				IncludeArchived: input.IncludeArchived,
				Category:        input.Category,
				SortBy:          input.SortBy,
				SortOrder:       input.SortOrder,
			})
		})

	srv.Tool("subscription.get").
		Description("Get one subscription with its payment history").
		Handler(func(ctx context.Context, input subscriptionIDInput) (*queries.SubscriptionDetailDTO, error) {
			if app == nil || app.GetSubscriptionHandler == nil {
				return nil, errors.New("subscription lookup requires database connection")
			}
			id, err := parseUUID(input.SubscriptionID)
			if err != nil {
				return nil, err
			}
			return app.GetSubscriptionHandler.Handle(ctx, queries.GetSubscriptionQuery{
				SubscriptionID: id,
				UserID:         app.CurrentUserID,
			})
		})

	srv.Tool("subscription.end").
		Description("End a subscription at a given date").
		Handler(func(ctx context.Context, input subscriptionEndInput) (map[string]any, error) {
			if app == nil || app.EndSubscriptionHandler == nil {
				return nil, errors.New("ending subscriptions requires database connection")
			}
			id, err := parseUUID(input.SubscriptionID)
			if err != nil {
				return nil, err
			}
			end, err := parseDate(input.EndDate, time.Now())
			if err != nil {
				return nil, err
			}
			if err := app.EndSubscriptionHandler.Handle(ctx, commands.EndSubscriptionCommand{
				SubscriptionID: id,
				UserID:         app.CurrentUserID,
				EndDate:        end,
			}); err != nil {
				return nil, err
			}
			return map[string]any{
				"subscription_id": id.String(),
				"end_date":        end.Format(dateLayout),
			}, nil
		})

	srv.Tool("subscription.archive").
		Description("Archive a subscription, hiding it from projections").
		Handler(func(ctx context.Context, input subscriptionIDInput) (map[string]any, error) {
			if app == nil || app.ArchiveSubscriptionHandler == nil {
				return nil, errors.New("archiving subscriptions requires database connection")
			}
			id, err := parseUUID(input.SubscriptionID)
			if err != nil {
				return nil, err
			}
			if err := app.ArchiveSubscriptionHandler.Handle(ctx, commands.ArchiveSubscriptionCommand{
				SubscriptionID: id,
				UserID:         app.CurrentUserID,
			}); err != nil {
				return nil, err
			}
			return map[string]any{"subscription_id": id.String(), "archived": true}, nil
		})

	return nil
}
