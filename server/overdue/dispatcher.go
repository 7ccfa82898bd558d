package overdue

import (
	"fmt"
	"html"
	"time"

	"github.com/vigil-app/vigil/server/models"
)

// GENERIC_SEND_ERROR is the only failure detail persisted to the alert
// log - raw transport errors stay in the operational logs so they can
// never leak through a user-facing surface
const GENERIC_SEND_ERROR = "email delivery failed"

// EmailSender is the outbound email transport consumed by the
// dispatcher. Satisfied by mailer.Client, swapped for a fake in tests
type EmailSender interface {
	SendEmail(to, subject, htmlBody string) error
}

type dispatcher struct {
	mailer EmailSender
}

// sendAlerts emails every emergency contact of an overdue user &
// appends an alert log row per attempt. One contact failing doesn't
// block the rest. Returns the number of alerts delivered
func (d *dispatcher) sendAlerts(user *models.User, occ *Occurrence, now time.Time) int {
	alertsSent := 0

	contacts, err := models.ContactsFor(user.ID)
	if err != nil {
		logg.Errorf("sendAlerts: failed to load contacts for user %v: %v", user.ID, err)
		return 0
	}

	hoursOverdue := occ.HoursOverdue(now)
	for i := range contacts {
		contact := &contacts[i]
		subject, body := renderAlertEmail(user.FirstName, contact.FirstName, hoursOverdue)

		err := d.mailer.SendEmail(contact.Email, subject, body)
		if err != nil {
			logg.Errorf("sendAlerts: failed to alert contact %v for user %v: %v", contact.ID, user.ID, err)
			d.recordAlert(user.ID, contact.ID, models.ALERT_FAILED, GENERIC_SEND_ERROR, now)
			continue
		}

		d.recordAlert(user.ID, contact.ID, models.ALERT_SUCCESS, "", now)
		alertsSent++
	}

	return alertsSent
}

// sendReminder emails the user about their upcoming deadline & appends
// a reminder log row keyed on the deadline occurrence. The row is
// written whether or not the send worked - a lost reminder is low
// severity, and the alert path is the safety backstop
func (d *dispatcher) sendReminder(user *models.User, occ *Occurrence, now time.Time) bool {
	if user.Email == "" {
		logg.Warnf("sendReminder: user %v has no contactable email, skipping", user.ID)
		return false
	}

	if user.CheckinSetting.NotificationMethod == models.SMS_NOTIFICATION {
		logg.Warnf("sendReminder: user %v requested sms which is unsupported, falling back to email", user.ID)
	}

	sent := true
	subject, body := renderReminderEmail(user.FirstName, occ.Deadline)
	err := d.mailer.SendEmail(user.Email, subject, body)
	if err != nil {
		logg.Errorf("sendReminder: failed to remind user %v: %v", user.ID, err)
		sent = false
	}

	err = models.CreateReminderLog(user.ID, occ.Deadline, now)
	if err != nil {
		logg.Errorf("sendReminder: failed to record reminder for user %v: %v", user.ID, err)
	}

	return sent
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (d *dispatcher) recordAlert(userID, contactID uint, status, errorMessage string, sentAt time.Time) {
	err := models.CreateAlertLog(userID, &contactID, status, errorMessage, sentAt)
	if err != nil {
		logg.Errorf("recordAlert: failed to record alert for user %v: %v", userID, err)
	}
}

// renderAlertEmail builds the message sent to an emergency contact.
// User-supplied names are entity-escaped before interpolation into the
// html body
func renderAlertEmail(userName, contactName string, hoursOverdue int) (subject string, body string) {
	safeUserName := html.EscapeString(userName)
	safeContactName := html.EscapeString(contactName)

	subject = fmt.Sprintf("Alert: %v missed their safety check-in", userName)
	body = fmt.Sprintf(
		"<h1>Safety alert</h1>"+
			"<p>Hi %v,</p>"+
			"<p>You're getting this message because you're %v's emergency contact. "+
			"%v missed their check-in and has been overdue for %v hour(s).</p>"+
			"<p>Please reach out to make sure they're okay.</p>"+
			"<p>This email was sent automatically by vigil.</p>",
		safeContactName, safeUserName, safeUserName, hoursOverdue)

	return subject, body
}

func renderReminderEmail(firstName string, deadline time.Time) (subject string, body string) {
	safeFirstName := html.EscapeString(firstName)

	subject = "Reminder: your safety check-in is due soon"
	body = fmt.Sprintf(
		"<h1>Check-in reminder</h1>"+
			"<p>Hi %v,</p>"+
			"<p>Your next check-in is due by %v. "+
			"If you don't check in before then, your emergency contacts will be alerted.</p>",
		safeFirstName, deadline.UTC().Format(time.RFC1123))

	return subject, body
}
