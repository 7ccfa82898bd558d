package models

import (
	"errors"
	"fmt"

	"github.com/vigil-app/vigil/server/auth"
	"gorm.io/gorm"
)

var (
	allFieldsExceptPassword = []string{"id",
		"first_name",
		"last_name",
		"phone_number",
		"email",
		"role_id",
		"created_at",
		"updated_at",
	}

	updatableFields = []string{"first_name",
		"last_name",
		"phone_number",
		"password",
	}
)

type User struct {
	BaseModel
	FirstName      string          `json:"first_name" validate:"required"`
	LastName       string          `json:"last_name" validate:"required"`
	PhoneNumber    string          `json:"phone_number,omitempty" validate:"omitempty,e164"`
	Email          string          `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password       string          `json:"password,omitempty" validate:"required,password" gorm:"not null"`
	RoleID         uint            `json:"role_id" gorm:"null"`
	CheckinSetting *CheckinSetting `json:"checkin_setting,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Contacts       []Contact       `json:"contacts,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Checkins       []Checkin       `json:"checkins,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(data["password"].(string))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Select(updatableFields).Updates(data).Error
}

func (user *User) UpdateCheckinSetting(data map[string]interface{}) error {
	return db.Model(&CheckinSetting{}).Where("user_id = ?", user.ID).Updates(data).Error
}

func (user *User) IsAdmin() (bool, error) {
	if user.RoleID == 0 {
		return false, nil
	}

	adminRole, err := FindRole(ADMIN_USER_ROLE)
	if err != nil {
		return false, err
	}

	return adminRole.ID == user.RoleID, nil
}

func (user *User) AddContact(contact *Contact) error {
	contact.UserID = user.ID
	return db.Create(contact).Error
}

func (user *User) LoadContacts() error {
	return db.Limit(500).Find(&user.Contacts, "user_id = ?", user.ID).Error
}

func (user *User) UpdateContact(contactID string, data map[string]interface{}) error {
	return db.Table("contacts").Where("id = ? AND user_id = ?", contactID, user.ID).Updates(data).Error
}

// DeleteContact removes one of the user's contacts, unless it's their
// last one - every user must keep at least one emergency contact
func (user *User) DeleteContact(id interface{}) error {
	var count int64
	err := db.Model(&Contact{}).Where("user_id = ?", user.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count <= 1 {
		return ErrLastContact
	}

	return db.Where("user_id = ?", user.ID).Delete(&Contact{}, id).Error
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserWithCheckinSetting(userID interface{}) (*User, error) {
	user := User{}
	err := db.Preload("CheckinSetting").Select(allFieldsExceptPassword).First(&user, userID).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserPassword(email string) (string, error) {
	user := &User{}
	err := db.Select("Password").First(user, "email = ?", email).Error

	if err != nil {
		return "", err
	}
	return user.Password, nil
}

func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	user.CheckinSetting = &CheckinSetting{
		IntervalHours:      DEFAULT_CHECKIN_INTERVAL_HOURS,
		NotificationMethod: EMAIL_NOTIFICATION,
	}
	return db.Create(user).Error
}

func DeleteUser(id interface{}) error {
	return db.Delete(&User{}, id).Error
}

func AtLeastOneUserExists() (bool, error) {
	err := db.First(&User{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// UsersWithCompletedOnboarding returns every user eligible for an
// overdue-check cycle, with their checkin settings preloaded
func UsersWithCompletedOnboarding() ([]User, error) {
	users := []User{}

	err := db.Preload("CheckinSetting").Joins(
		"INNER JOIN checkin_settings ON checkin_settings.user_id = users.id AND checkin_settings.onboarding_complete = true").
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}
