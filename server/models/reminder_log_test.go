package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReminderLogRejectsDuplicateOccurrence(t *testing.T) {
	InitializeTestDb()

	user := &User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "fakePassword123"}
	require.NoError(t, CreateUser(user))

	deadline := time.Date(2022, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, CreateReminderLog(user.ID, deadline, time.Now().UTC()))

	// a second writer racing on the same (user, deadline) pair loses on
	// the unique index instead of double-sending
	err := CreateReminderLog(user.ID, deadline, time.Now().UTC())
	assert.Error(t, err)

	sent, err := ReminderSentFor(user.ID, deadline)
	require.NoError(t, err)
	assert.True(t, sent)

	// the next cycle's deadline is a fresh occurrence
	require.NoError(t, CreateReminderLog(user.ID, deadline.Add(24*time.Hour), time.Now().UTC()))
}
