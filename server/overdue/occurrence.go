package overdue

import "time"

const (
	// REMINDER_LEAD_HOURS is how long before a deadline the user gets a
	// reminder to check in
	REMINDER_LEAD_HOURS = 2

	// ALERT_WINDOW_HOURS is the suppression window between repeat alerts
	// for a user who stays overdue
	ALERT_WINDOW_HOURS = 4

	NORMAL       = "normal"
	REMINDER_DUE = "reminder-due"
	ALERT_DUE    = "alert-due"
)

// Occurrence is one deadline instance tied to one check-in cycle
type Occurrence struct {
	Deadline   time.Time
	ReminderAt time.Time

	intervalHours int
}

// NewOccurrence computes the deadline & reminder instants for a user's
// last check-in. Returns nil when the user has never checked in - no
// computable deadline, so they're excluded from the cycle
func NewOccurrence(lastCheckinAt *time.Time, intervalHours int) *Occurrence {
	if lastCheckinAt == nil {
		return nil
	}

	deadline := lastCheckinAt.Add(time.Duration(intervalHours) * time.Hour)
	return &Occurrence{
		Deadline:      deadline,
		ReminderAt:    deadline.Add(-REMINDER_LEAD_HOURS * time.Hour),
		intervalHours: intervalHours,
	}
}

// Classify maps 'now' to one of three mutually exclusive states:
//   - ALERT_DUE when now >= deadline (closed lower bound)
//   - REMINDER_DUE when reminderAt <= now < deadline, and the interval is
//     long enough for the reminder window to exist at all
//   - NORMAL otherwise
func (occ *Occurrence) Classify(now time.Time) string {
	if !now.Before(occ.Deadline) {
		return ALERT_DUE
	}

	if !now.Before(occ.ReminderAt) && occ.intervalHours > REMINDER_LEAD_HOURS {
		return REMINDER_DUE
	}

	return NORMAL
}

// HoursOverdue returns the whole hours elapsed since the deadline
func (occ *Occurrence) HoursOverdue(now time.Time) int {
	return int(now.Sub(occ.Deadline).Hours())
}
