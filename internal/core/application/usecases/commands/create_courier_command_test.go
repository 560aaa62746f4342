package commands_test

import (
	"testing"

	"delivery-tracker/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateCourierCommand_ValidInput(t *testing.T) {
	cmd, err := commands.NewCreateCourierCommand("Luis", "+573009998877")
	require.NoError(t, err)
	require.NoError(t, cmd.CourierID().Validate())
	assert.Equal(t, "Luis", cmd.Name())
	assert.Equal(t, "+573009998877", cmd.Phone())
}

func TestNewCreateCourierCommand_EmptyName(t *testing.T) {
	_, err := commands.NewCreateCourierCommand(" ", "+573009998877")
	require.ErrorIs(t, err, commands.ErrNameIsRequired)
}

func TestNewCreateCourierCommand_EmptyPhone(t *testing.T) {
	_, err := commands.NewCreateCourierCommand("Luis", "")
	require.ErrorIs(t, err, commands.ErrPhoneIsRequired)
}

func TestNewCreateCourierCommand_GeneratesDistinctIDs(t *testing.T) {
	first, err := commands.NewCreateCourierCommand("Luis", "1")
	require.NoError(t, err)
	second, err := commands.NewCreateCourierCommand("Luis", "1")
	require.NoError(t, err)

	assert.NotEqual(t, first.CourierID(), second.CourierID())
}
