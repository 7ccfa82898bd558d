package models

import "time"

const (
	ALERT_SUCCESS = "success"
	ALERT_FAILED  = "failed"
)

// AlertLog is an append-only record of an attempted overdue-alert send.
// Rows are never updated or deleted - the overdue checker derives its
// alert suppression window from them.
type AlertLog struct {
	BaseModel
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	ContactID    *uint     `json:"contact_id,omitempty"`
	SentAt       time.Time `json:"sent_at" gorm:"not null;index"`
	Status       string    `json:"status" gorm:"not null"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

func CreateAlertLog(userID uint, contactID *uint, status, errorMessage string, sentAt time.Time) error {
	return db.Create(&AlertLog{
		UserID:       userID,
		ContactID:    contactID,
		SentAt:       sentAt,
		Status:       status,
		ErrorMessage: errorMessage,
	}).Error
}

// AlertSentSince reports whether any alert send was attempted for the
// user at or after 'since'
func AlertSentSince(userID uint, since time.Time) (bool, error) {
	var count int64

	err := db.Model(&AlertLog{}).
		Where("user_id = ? AND sent_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func FetchAlertLogs(page int, userID interface{}) ([]AlertLog, *Paging, error) {
	var total int64
	alertLogs := []AlertLog{}

	err := db.Model(&AlertLog{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, MIN_PAGE_SIZE)).
		Order("sent_at desc").
		Find(&alertLogs, "user_id = ?", userID).Error
	if err != nil {
		return nil, nil, err
	}

	return alertLogs, newPaging(int64(page), MIN_PAGE_SIZE, total), nil
}
