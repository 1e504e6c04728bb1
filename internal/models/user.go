package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType represents the type of user
type UserType string

const (
	UserTypeAdmin  UserType = "Admin"
	UserTypeMember UserType = "Member"
)

// User represents a user in the system
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string   `gorm:"type:varchar(255)" json:"name"`
	Email       string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	FirebaseUID string   `gorm:"type:varchar(128);index" json:"firebase_uid"`
	UserType    UserType `gorm:"type:varchar(20);default:'Member'" json:"user_type"`

	// Relationships
	Subscription *Subscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
}

// IsAdmin reports whether the user holds the elevated role
func (u User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}
