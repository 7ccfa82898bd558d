package models

import "time"

const (
	EMAIL_NOTIFICATION = "email"
	SMS_NOTIFICATION   = "sms"

	DEFAULT_CHECKIN_INTERVAL_HOURS = 24
	MIN_CHECKIN_INTERVAL_HOURS     = 1
	MAX_CHECKIN_INTERVAL_HOURS     = 168
)

var NotificationMethodMap = map[string]bool{
	EMAIL_NOTIFICATION: true,
	SMS_NOTIFICATION:   true,
}

type CheckinSetting struct {
	BaseModel
	UserID             uint       `json:"user_id" gorm:"not null;unique"`
	IntervalHours      int        `json:"interval_hours" gorm:"default:24"`
	NotificationMethod string     `json:"notification_method" gorm:"default:email"`
	OnboardingComplete bool       `json:"onboarding_complete" gorm:"default:false"`
	LastCheckinAt      *time.Time `json:"last_checkin_at"`
}

func FindCheckinSetting(userID interface{}) (*CheckinSetting, error) {
	checkinSetting := CheckinSetting{}
	err := db.First(&checkinSetting, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}

	return &checkinSetting, nil
}
