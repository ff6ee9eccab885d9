package billing

import (
	"context"
	"strings"
	"testing"

	"github.com/felixgeelhaar/subtrack/adapter/cli"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func resetFlags() {
	grantFeature = ""
	grantActive = true
}

func TestStatusCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	var output strings.Builder
	statusCmd.SetContext(context.Background())
	statusCmd.SetOut(&output)

	err := statusCmd.RunE(statusCmd, []string{})
	assert.NoError(t, err)
	assert.Contains(t, output.String(), "requires database connection")
}

func TestStatusCmd_NoBillingService(t *testing.T) {
	resetFlags()
	app := &cli.App{
		CurrentUserID:  uuid.New(),
		BillingService: nil,
	}
	cli.SetApp(app)
	defer cli.SetApp(nil)

	var output strings.Builder
	statusCmd.SetContext(context.Background())
	statusCmd.SetOut(&output)

	err := statusCmd.RunE(statusCmd, []string{})
	assert.NoError(t, err)
	assert.Contains(t, output.String(), "requires database connection")
}

func TestGrantCmd_NoApp(t *testing.T) {
	resetFlags()
	cli.SetApp(nil)

	grantFeature = "calendar-export"
	grantCmd.SetContext(context.Background())

	err := grantCmd.RunE(grantCmd, []string{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "require database connection")
}

func TestGrantCmd_MissingFeature(t *testing.T) {
	resetFlags()
	app := &cli.App{
		CurrentUserID: uuid.New(),
	}
	cli.SetApp(app)
	defer cli.SetApp(nil)

	grantCmd.SetContext(context.Background())

	err := grantCmd.RunE(grantCmd, []string{})
	assert.Error(t, err)
}
