package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash    string    `gorm:"column:password_hash;not null" json:"-"`
	FirstName       string    `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName        string    `gorm:"type:varchar(50);not null" json:"last_name"`
	MobileNumber    string    `gorm:"type:varchar(20)" json:"mobile_number"`
	ProfileImageKey *string   `gorm:"type:varchar(512)" json:"-"`
	Role            Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
