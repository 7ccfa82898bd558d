package overdue

import (
	"time"

	"github.com/vigil-app/vigil/server/models"
)

// sentChecker answers "has a notification for this user & occurrence
// already been handled?". Alerts & reminders use different policies on
// purpose - see the implementations below
type sentChecker interface {
	AlreadySent(userID uint, occ *Occurrence, now time.Time) (bool, error)
}

// alertWindowPolicy suppresses by time elapsed since the last send.
// Overdue state persists until the user's next check-in (which defines a
// whole new deadline), so alerts repeat at most once per
// ALERT_WINDOW_HOURS no matter how often the checker runs
type alertWindowPolicy struct{}

func (alertWindowPolicy) AlreadySent(userID uint, _ *Occurrence, now time.Time) (bool, error) {
	return models.AlertSentSince(userID, now.Add(-ALERT_WINDOW_HOURS*time.Hour))
}

// reminderOccurrencePolicy suppresses by identity of the occurrence.
// A reminder is a one-shot event per deadline - keying on
// (user, deadline) stays correct even if the checker runs every minute
// for the entire reminder window
type reminderOccurrencePolicy struct{}

func (reminderOccurrencePolicy) AlreadySent(userID uint, occ *Occurrence, _ time.Time) (bool, error) {
	return models.ReminderSentFor(userID, occ.Deadline)
}
