package commands_test

import (
	"testing"

	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	cmd, err := commands.NewCreateOrderCommand(business, customer, contact, 25)
	require.NoError(t, err)
	assert.Equal(t, business, cmd.Business())
	assert.Equal(t, customer, cmd.Customer())
	assert.Equal(t, contact, cmd.Contact())
	assert.Equal(t, 25, cmd.BaseMinutes())
}

func TestNewCreateOrderCommand_UnknownBaseMinutes(t *testing.T) {
	cmd, err := commands.NewCreateOrderCommand(business, customer, order.Contact{Phone: "+1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, cmd.BaseMinutes())
}

func TestNewCreateOrderCommand_NegativeBaseMinutes(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(business, customer, contact, -1)
	require.ErrorIs(t, err, commands.ErrBaseMinutesIsInvalid)
}

func TestNewCreateOrderCommand_MissingContact(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(business, customer, order.Contact{}, 10)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewCreateOrderCommand_UnconstructedLocation(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.Location{}, customer, contact, 10)
	require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
}
