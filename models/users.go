package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Role is the access level derived from a user's flags.
type Role int

const (
	RoleUser Role = iota
	RoleStaff
	RoleSuperuser
)

func (r Role) String() string {
	switch r {
	case RoleSuperuser:
		return "superuser"
	case RoleStaff:
		return "staff"
	default:
		return "user"
	}
}

// User is an account that can log in. Only staff and superusers may
// operate the catalog and the POS.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsStaff      bool   `gorm:"not null;default:false"`
	IsSuperuser  bool   `gorm:"not null;default:false"`
	IsActive     bool   `gorm:"not null;default:true"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) Role() Role {
	switch {
	case u.IsSuperuser:
		return RoleSuperuser
	case u.IsStaff:
		return RoleStaff
	default:
		return RoleUser
	}
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
