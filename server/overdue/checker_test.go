package overdue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigil-app/vigil/server/models"
)

type fakeEmail struct {
	To      string
	Subject string
	Body    string
}

// fakeMailer stands in for mailer.Client. Sends to addresses listed in
// failFor return an error without being recorded
type fakeMailer struct {
	sent    []fakeEmail
	failFor map[string]error
}

func (f *fakeMailer) SendEmail(to, subject, htmlBody string) error {
	if err, ok := f.failFor[to]; ok {
		return err
	}

	f.sent = append(f.sent, fakeEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func TestRunSendsAlertsToEveryContactOfOverdueUser(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{}

	user := createTestUser(t, "Ada", "ada@example.com", 24, hoursAgo(26))
	require.NoError(t, user.AddContact(&models.Contact{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", IsPrimary: true}))
	require.NoError(t, user.AddContact(&models.Contact{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"}))

	result, err := NewChecker(mailer).Run()
	require.NoError(t, err)

	assert.Equal(t, 2, result.AlertsSent)
	assert.Equal(t, 0, result.RemindersSent)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "grace@example.com", mailer.sent[0].To)
	assert.Equal(t, "alan@example.com", mailer.sent[1].To)
	assert.Contains(t, mailer.sent[0].Body, "overdue for 2 hour(s)")

	alertLogs, _, err := models.FetchAlertLogs(1, user.ID)
	require.NoError(t, err)
	require.Len(t, alertLogs, 2)
	for _, alertLog := range alertLogs {
		assert.Equal(t, models.ALERT_SUCCESS, alertLog.Status)
		assert.Empty(t, alertLog.ErrorMessage)
	}
}

func TestRunSendsReminderAheadOfDeadline(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{}

	// 22.5h into a 24h interval - inside the 2h reminder window
	lastCheckin := time.Now().UTC().Add(-22*time.Hour - 30*time.Minute).Truncate(time.Second)
	user := createTestUser(t, "Ada", "ada@example.com", 24, &lastCheckin)

	result, err := NewChecker(mailer).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, result.AlertsSent)
	assert.Equal(t, 1, result.RemindersSent)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "check-in is due soon")

	sent, err := models.ReminderSentFor(user.ID, lastCheckin.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestRunIsIdempotentWithinDedupWindows(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{}

	alertUser := createTestUser(t, "Ada", "ada@example.com", 24, hoursAgo(26))
	require.NoError(t, alertUser.AddContact(&models.Contact{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}))

	reminderLastCheckin := time.Now().UTC().Add(-23 * time.Hour).Truncate(time.Second)
	createTestUser(t, "Mary", "mary@example.com", 24, &reminderLastCheckin)

	checker := NewChecker(mailer)

	result, err := checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.AlertsSent)
	assert.Equal(t, 1, result.RemindersSent)

	result, err = checker.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.AlertsSent)
	assert.Equal(t, 0, result.RemindersSent)
	assert.Len(t, mailer.sent, 2, "no duplicate emails on the second cycle")
}

func TestRunSkipsUserWithRecentAlert(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{}

	user := createTestUser(t, "Ada", "ada@example.com", 24, hoursAgo(26))
	require.NoError(t, user.AddContact(&models.Contact{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}))

	// an alert from a previous cycle 1h ago suppresses this one
	require.NoError(t, models.CreateAlertLog(user.ID, nil, models.ALERT_SUCCESS, "", time.Now().UTC().Add(-time.Hour)))

	result, err := NewChecker(mailer).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, result.AlertsSent)
	assert.Empty(t, mailer.sent)
}

func TestRunSkipsUserWhoNeverCheckedIn(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{}

	user := createTestUser(t, "Ada", "ada@example.com", 24, nil)
	require.NoError(t, user.AddContact(&models.Contact{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}))

	result, err := NewChecker(mailer).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, result.AlertsSent)
	assert.Equal(t, 0, result.RemindersSent)
	assert.Empty(t, mailer.sent)

	alertLogs, _, err := models.FetchAlertLogs(1, user.ID)
	require.NoError(t, err)
	assert.Empty(t, alertLogs)
}

func TestRunRecordsFailedSendsAndKeepsGoing(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{failFor: map[string]error{
		"grace@example.com": errors.New("451 4.3.0 temporary failure"),
	}}

	user1 := createTestUser(t, "Ada", "ada@example.com", 24, hoursAgo(26))
	require.NoError(t, user1.AddContact(&models.Contact{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", IsPrimary: true}))
	require.NoError(t, user1.AddContact(&models.Contact{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"}))

	user2 := createTestUser(t, "Mary", "mary@example.com", 24, hoursAgo(30))
	require.NoError(t, user2.AddContact(&models.Contact{FirstName: "Katherine", LastName: "Johnson", Email: "katherine@example.com"}))

	result, err := NewChecker(mailer).Run()
	require.NoError(t, err)

	// the failed contact is excluded from the count, everyone else still gets alerted
	assert.Equal(t, 2, result.AlertsSent)

	alertLogs, _, err := models.FetchAlertLogs(1, user1.ID)
	require.NoError(t, err)
	require.Len(t, alertLogs, 2)

	statuses := map[string]string{}
	for _, alertLog := range alertLogs {
		statuses[alertLog.Status] = alertLog.ErrorMessage
	}
	assert.Contains(t, statuses, models.ALERT_FAILED)
	assert.Equal(t, GENERIC_SEND_ERROR, statuses[models.ALERT_FAILED], "raw transport error never persisted")
}

func TestRunFallsBackToEmailForSmsUsers(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{}

	user := createTestUser(t, "Ada", "ada@example.com", 24, hoursAgo(23))
	require.NoError(t, user.UpdateCheckinSetting(map[string]interface{}{"notification_method": models.SMS_NOTIFICATION}))

	result, err := NewChecker(mailer).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, result.RemindersSent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@example.com", mailer.sent[0].To)
}

func TestRunSkipsUserWithMalformedSettings(t *testing.T) {
	models.InitializeTestDb()
	mailer := &fakeMailer{}

	user := createTestUser(t, "Ada", "ada@example.com", 24, hoursAgo(26))
	require.NoError(t, user.UpdateCheckinSetting(map[string]interface{}{"interval_hours": 0}))

	result, err := NewChecker(mailer).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, result.AlertsSent)
	assert.Empty(t, mailer.sent)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func createTestUser(t *testing.T, firstName, email string, intervalHours int, lastCheckinAt *time.Time) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: firstName,
		LastName:  "Lovelace",
		Email:     email,
		Password:  fmt.Sprintf("%v_fakePassword", strings.ToLower(firstName)),
	}
	require.NoError(t, models.CreateUser(user))

	data := map[string]interface{}{
		"onboarding_complete": true,
		"interval_hours":      intervalHours,
	}
	if lastCheckinAt != nil {
		data["last_checkin_at"] = *lastCheckinAt
	}
	require.NoError(t, user.UpdateCheckinSetting(data))

	return user
}

func hoursAgo(hours int) *time.Time {
	at := time.Now().UTC().Add(-time.Duration(hours) * time.Hour).Truncate(time.Second)
	return &at
}
