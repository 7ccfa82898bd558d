package models

import "errors"

var ErrLastContact = errors.New("user must have at least one emergency contact")

type Contact struct {
	BaseModel
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,e164"`
	Email       string `json:"email" validate:"required,email" gorm:"not null"`
	IsPrimary   bool   `json:"is_primary"`
	UserID      uint   `json:"user_id" gorm:"not null"`
}

// ContactsFor returns the emergency contacts for a user,
// primary contact first
func ContactsFor(userID interface{}) ([]Contact, error) {
	contacts := []Contact{}

	err := db.Order("is_primary desc, id asc").Find(&contacts, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}
