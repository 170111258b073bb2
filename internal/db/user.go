package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is an operator allowed to use the admin API.
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// EnsureUser creates a bcrypt-hashed operator account when both fields are
// non-empty and the username is not taken yet. It reports whether a user was created.
func EnsureUser(gdb *gorm.DB, username, password string) (bool, error) {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return false, nil
	}

	if gdb == nil {
		return false, errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return false, err
		}

		if err := gdb.Create(&User{Username: trimmedUser, Password: string(hashed)}).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// CheckPassword compares a plain password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
