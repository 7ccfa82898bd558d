package overdue

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOccurrence(t *testing.T) {
	lastCheckin := time.Date(2022, 3, 1, 9, 0, 0, 0, time.UTC)

	occurrence := NewOccurrence(&lastCheckin, 24)
	assert.Equal(t, lastCheckin.Add(24*time.Hour), occurrence.Deadline,
		"deadline should be lastCheckinAt + intervalHours")
	assert.Equal(t, occurrence.Deadline.Add(-REMINDER_LEAD_HOURS*time.Hour), occurrence.ReminderAt,
		"reminder instant should lead the deadline by the reminder lead")

	assert.Nil(t, NewOccurrence(nil, 24), "users who never checked in have no occurrence")
}

func TestClassify(t *testing.T) {
	lastCheckin := time.Date(2022, 3, 1, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		desc          string
		intervalHours int
		now           time.Time
		expected      string
	}{
		{"before the reminder window", 24, lastCheckin.Add(10 * time.Hour), NORMAL},
		{"inside the reminder window", 24, lastCheckin.Add(23 * time.Hour), REMINDER_DUE},
		{"at the reminder instant", 24, lastCheckin.Add(22 * time.Hour), REMINDER_DUE},
		{"just before the deadline", 24, lastCheckin.Add(24*time.Hour - time.Second), REMINDER_DUE},
		{"exactly at the deadline", 24, lastCheckin.Add(24 * time.Hour), ALERT_DUE},
		{"past the deadline", 24, lastCheckin.Add(26 * time.Hour), ALERT_DUE},

		// intervals no longer than the reminder lead have no reminder window
		{"2h interval has no reminder window", 2, lastCheckin.Add(90 * time.Minute), NORMAL},
		{"1h interval has no reminder window", 1, lastCheckin.Add(30 * time.Minute), NORMAL},
		{"2h interval still alerts", 2, lastCheckin.Add(2 * time.Hour), ALERT_DUE},
		{"1h interval still alerts", 1, lastCheckin.Add(61 * time.Minute), ALERT_DUE},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			occurrence := NewOccurrence(&lastCheckin, tcase.intervalHours)
			assert.Equal(t, tcase.expected, occurrence.Classify(tcase.now))
		})
	}
}

func TestHoursOverdue(t *testing.T) {
	lastCheckin := time.Date(2022, 3, 1, 9, 0, 0, 0, time.UTC)
	occurrence := NewOccurrence(&lastCheckin, 24)

	testCases := []struct {
		sinceDeadline time.Duration
		expected      int
	}{
		{0, 0},
		{59 * time.Minute, 0},
		{2 * time.Hour, 2},
		{2*time.Hour + 30*time.Minute, 2},
		{47 * time.Hour, 47},
	}

	for _, tcase := range testCases {
		desc := fmt.Sprintf("%v past the deadline is %v whole hour(s) overdue", tcase.sinceDeadline, tcase.expected)

		t.Run(desc, func(t *testing.T) {
			now := occurrence.Deadline.Add(tcase.sinceDeadline)
			assert.Equal(t, tcase.expected, occurrence.HoursOverdue(now))
		})
	}
}
