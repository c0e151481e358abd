package datamodel

import "time"

type Company struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
}

func (Company) TableName() string { return "companies" }

type Department struct {
	ID        int64 `gorm:"primaryKey"`
	Name      string
	CompanyID int64 `gorm:"index"`
	CreatedAt time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}

func (Department) TableName() string { return "departments" }

type Invitation struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"index"`
	Status       string `gorm:"index"`
	CompanyID    int64
	DepartmentID int64
	InvitedByID  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Company    *Company    `gorm:"foreignKey:CompanyID"`
	Department *Department `gorm:"foreignKey:DepartmentID"`
}

func (Invitation) TableName() string { return "invitations" }
