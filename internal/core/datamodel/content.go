package datamodel

import "time"

// Policy optionally carries metadata for a document stored by the upload
// collaborator; the binary itself never enters the database.
type Policy struct {
	ID           int64 `gorm:"primaryKey"`
	Title        string
	Content      string
	DepartmentID int64 `gorm:"index"`
	FilePath     *string
	FileName     *string
	FileSize     *int64
	MimeType     *string
	CreatedAt    time.Time

	Department *Department `gorm:"foreignKey:DepartmentID"`
}

func (Policy) TableName() string { return "policies" }

type TrainingContent struct {
	ID        int64 `gorm:"primaryKey"`
	Title     string
	Content   string
	PolicyID  int64 `gorm:"index"`
	FilePath  *string
	FileName  *string
	FileSize  *int64
	MimeType  *string
	CreatedAt time.Time

	Policy *Policy `gorm:"foreignKey:PolicyID"`
}

func (TrainingContent) TableName() string { return "training_contents" }
