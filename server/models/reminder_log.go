package models

import "time"

// ReminderLog is an append-only record of a sent pre-deadline reminder.
// (user_id, deadline_at) identifies the occurrence - the unique index
// closes the race between overlapping checker runs.
type ReminderLog struct {
	BaseModel
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_reminder_occurrence"`
	DeadlineAt time.Time `json:"deadline_at" gorm:"not null;uniqueIndex:idx_reminder_occurrence"`
	SentAt     time.Time `json:"sent_at" gorm:"not null"`
}

func CreateReminderLog(userID uint, deadlineAt, sentAt time.Time) error {
	return db.Create(&ReminderLog{
		UserID:     userID,
		DeadlineAt: deadlineAt,
		SentAt:     sentAt,
	}).Error
}

// ReminderSentFor reports whether a reminder was already sent for the
// given deadline occurrence
func ReminderSentFor(userID uint, deadlineAt time.Time) (bool, error) {
	var count int64

	err := db.Model(&ReminderLog{}).
		Where("user_id = ? AND deadline_at = ?", userID, deadlineAt).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
