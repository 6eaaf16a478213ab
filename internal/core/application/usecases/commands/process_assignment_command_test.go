package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessAssignmentCommand_ValidInput(t *testing.T) {
	assignmentID := kernel.NewUUID()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewProcessAssignmentCommand(assignmentID, orderID)
	require.NoError(t, err)
	assert.Equal(t, assignmentID, cmd.AssignmentID())
	assert.Equal(t, orderID, cmd.OrderID())
}

func TestNewProcessAssignmentCommand_InvalidIDs(t *testing.T) {
	_, err := commands.NewProcessAssignmentCommand(kernel.UUID{}, kernel.NewUUID())
	require.Error(t, err)

	_, err = commands.NewProcessAssignmentCommand(kernel.NewUUID(), kernel.UUID{})
	require.Error(t, err)
}

func TestProcessAssignmentCommand_NotConstructed(t *testing.T) {
	var cmd commands.ProcessAssignmentCommand
	err := cmd.Validate()
	require.ErrorIs(t, err, commands.ErrProcessAssignmentCommandIsNotConstructed)
}
