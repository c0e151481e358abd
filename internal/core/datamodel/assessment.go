package datamodel

import "time"

// Assessment has no status column: openness is derived from ScheduledAt
// against the current time, completion from Result existence per user.
type Assessment struct {
	ID          int64 `gorm:"primaryKey"`
	Title       string
	PolicyID    int64 `gorm:"index"`
	ScheduledAt *time.Time
	CreatedAt   time.Time

	Policy    *Policy    `gorm:"foreignKey:PolicyID"`
	Questions []Question `gorm:"foreignKey:AssessmentID"`
	Results   []Result   `gorm:"foreignKey:AssessmentID"`
}

func (Assessment) TableName() string { return "assessments" }

type Question struct {
	ID           int64 `gorm:"primaryKey"`
	Text         string
	AssessmentID int64 `gorm:"index"`
	CreatedAt    time.Time
}

func (Question) TableName() string { return "questions" }

// Result rows are unique per (user, assessment); the index backs the
// availability filter's no-prior-result guarantee under concurrent submits.
type Result struct {
	ID           int64 `gorm:"primaryKey"`
	UserID       int64 `gorm:"uniqueIndex:idx_results_user_assessment"`
	AssessmentID int64 `gorm:"uniqueIndex:idx_results_user_assessment"`
	Score        float64
	CreatedAt    time.Time
}

func (Result) TableName() string { return "results" }

// PerformanceData is the externally populated compliance feed; nothing in
// this codebase writes it outside of seeds and tests.
type PerformanceData struct {
	ID           int64 `gorm:"primaryKey"`
	UserID       int64 `gorm:"index"`
	DepartmentID int64 `gorm:"index"`
	Metric       string
	Value        float64
	Compliance   bool
	Date         time.Time
}

func (PerformanceData) TableName() string { return "performance_data" }
