package subscription

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/felixgeelhaar/subtrack/internal/tracking/application/commands"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func resetFlags() {
	addAmount = 0
	addCurrency = "USD"
	addCycle = "monthly"
	addCategory = ""
	addStart = ""
	addEnd = ""
	addNotes = ""
	endDate = ""
	deleteConfirmed = false
}

func TestAddCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	addCmd.SetContext(context.Background())

	// Degrades to a notice instead of failing.
	err := addCmd.RunE(addCmd, []string{"Netflix"})
	assert.NoError(t, err)
}

func TestAddCmd_BadStartDate(t *testing.T) {
	resetFlags()
	app := &cli.App{
		CurrentUserID:             uuid.New(),
		CreateSubscriptionHandler: commands.NewCreateSubscriptionHandler(nil, nil, nil, nil),
	}
	cli.SetApp(app)
	defer cli.SetApp(nil)

	addStart = "06/01/2025"
	addCmd.SetContext(context.Background())

	err := addCmd.RunE(addCmd, []string{"Netflix"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date")
}

func TestEndCmd_InvalidID(t *testing.T) {
	resetFlags()
	app := &cli.App{
		CurrentUserID:          uuid.New(),
		EndSubscriptionHandler: commands.NewEndSubscriptionHandler(nil, nil, nil),
	}
	cli.SetApp(app)
	defer cli.SetApp(nil)

	endCmd.SetContext(context.Background())

	err := endCmd.RunE(endCmd, []string{"not-a-uuid"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid subscription ID")
}

func TestDeleteCmd_RequiresConfirmation(t *testing.T) {
	resetFlags()
	app := &cli.App{
		CurrentUserID:             uuid.New(),
		DeleteSubscriptionHandler: commands.NewDeleteSubscriptionHandler(nil, nil, nil),
	}
	cli.SetApp(app)
	defer cli.SetApp(nil)

	deleteCmd.SetContext(context.Background())

	err := deleteCmd.RunE(deleteCmd, []string{uuid.New().String()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}
