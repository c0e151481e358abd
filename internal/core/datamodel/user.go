package datamodel

import "time"

// User is the storage model for every account in the system regardless of
// role. CompanyID and DepartmentID stay null for users mid-onboarding.
type User struct {
	ID           int64   `gorm:"primaryKey"`
	Email        string  `gorm:"uniqueIndex"`
	PasswordHash string  `gorm:"column:password_hash"`
	Role         string  `gorm:"index"`
	CompanyID    *int64  `gorm:"index"`
	DepartmentID *int64  `gorm:"index"`
	FirstName    *string
	LastName     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Company    *Company    `gorm:"foreignKey:CompanyID"`
	Department *Department `gorm:"foreignKey:DepartmentID"`
}

func (User) TableName() string { return "users" }

type Notification struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    *int64 `gorm:"index"`
	Message   string
	CreatedAt time.Time
}

func (Notification) TableName() string { return "notifications" }
