package models

import "time"

type Checkin struct {
	BaseModel
	UserID uint `json:"user_id" gorm:"not null"`
}

// CreateCheckin appends a check-in record for the user & resets their
// deadline clock by stamping 'last_checkin_at' on their settings
func CreateCheckin(userID uint) error {
	currentTime := time.Now().UTC()

	err := db.Model(&Checkin{}).Create(map[string]interface{}{
		"user_id":    userID,
		"created_at": currentTime,
		"updated_at": currentTime,
	}).Error
	if err != nil {
		return err
	}

	return db.Model(&CheckinSetting{}).
		Where("user_id = ?", userID).
		Update("last_checkin_at", currentTime).Error
}

func FetchCheckins(page int, userID interface{}) ([]Checkin, *Paging, error) {
	var total int64
	checkins := []Checkin{}

	err := db.Model(&Checkin{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, MIN_PAGE_SIZE)).
		Order("created_at desc").
		Find(&checkins, "user_id = ?", userID).Error
	if err != nil {
		return nil, nil, err
	}

	return checkins, newPaging(int64(page), MIN_PAGE_SIZE, total), nil
}
