package overdue

import (
	"time"

	"github.com/vigil-app/vigil/colors"
	"github.com/vigil-app/vigil/server/logger"
	"github.com/vigil-app/vigil/server/models"
)

var logg = logger.NewLogger()

// Result is the aggregate outcome of one overdue-check cycle
type Result struct {
	AlertsSent    int `json:"alertsSent"`
	RemindersSent int `json:"remindersSent"`
}

// Checker runs overdue-detection cycles. It keeps no state between
// runs - classification & dedup are re-derived from the db every cycle,
// so edits to a user's check-ins or interval take effect immediately
type Checker struct {
	dispatcher    *dispatcher
	alertGuard    sentChecker
	reminderGuard sentChecker
}

func NewChecker(mailer EmailSender) *Checker {
	return &Checker{
		dispatcher:    &dispatcher{mailer: mailer},
		alertGuard:    alertWindowPolicy{},
		reminderGuard: reminderOccurrencePolicy{},
	}
}

// Run executes one cycle over every onboarded user. Failing to load the
// user list is fatal to the run; anything that goes wrong for a single
// user is logged & the loop moves on
func (checker *Checker) Run() (*Result, error) {
	users, err := models.UsersWithCompletedOnboarding()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &Result{}

	for i := range users {
		checker.processUser(&users[i], now, result)
	}

	logg.Infof(colors.Blue("overdue check complete: %v user(s) scanned, %v alert(s) sent, %v reminder(s) sent"),
		len(users), result.AlertsSent, result.RemindersSent)

	return result, nil
}

func (checker *Checker) processUser(user *models.User, now time.Time, result *Result) {
	settings := user.CheckinSetting
	if settings == nil || settings.IntervalHours <= 0 {
		logg.Warnf("skipping user %v: malformed checkin settings", user.ID)
		return
	}

	occurrence := NewOccurrence(settings.LastCheckinAt, settings.IntervalHours)
	if occurrence == nil {
		return
	}

	switch occurrence.Classify(now) {
	case ALERT_DUE:
		alreadySent, err := checker.alertGuard.AlreadySent(user.ID, occurrence, now)
		if err != nil {
			logg.Errorf("alert dedup check failed for user %v: %v", user.ID, err)
			return
		}
		if alreadySent {
			logg.Infof("skipping user %v - alert already sent recently", user.ID)
			return
		}

		result.AlertsSent += checker.dispatcher.sendAlerts(user, occurrence, now)

	case REMINDER_DUE:
		alreadySent, err := checker.reminderGuard.AlreadySent(user.ID, occurrence, now)
		if err != nil {
			logg.Errorf("reminder dedup check failed for user %v: %v", user.ID, err)
			return
		}
		if alreadySent {
			return
		}

		if checker.dispatcher.sendReminder(user, occurrence, now) {
			result.RemindersSent++
		}
	}
}
