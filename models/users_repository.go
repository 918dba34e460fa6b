package models

import (
	"errors"

	"gorm.io/gorm"
)

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (r *UsersRepository) GetByUsername(username string) (*User, error) {
	var user User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UsersRepository) GetByID(id uint) (*User, error) {
	var user User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EnsureSuperuser creates the named superuser, or resets its password and
// flags when it already exists.
func (r *UsersRepository) EnsureSuperuser(username, password string) (*User, error) {
	user, err := r.GetByUsername(username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if user == nil {
		user = &User{Username: username}
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	user.IsStaff = true
	user.IsSuperuser = true
	user.IsActive = true

	if err := r.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
