package performance

import "time"

// Record is one entry of the compliance feed: a measured metric for a user,
// flagged compliant or not.
type Record struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	DepartmentID int64     `json:"departmentId"`
	Metric       string    `json:"metric"`
	Value        float64   `json:"value"`
	Compliance   bool      `json:"compliance"`
	Date         time.Time `json:"date"`

	UserEmail      string `json:"userEmail,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
}

// UserResult is an assessment outcome as shown on the personal view.
type UserResult struct {
	AssessmentID    int64     `json:"assessmentId"`
	AssessmentTitle string    `json:"assessmentTitle"`
	Score           float64   `json:"score"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PersonalPerformance is everything an employee sees about themselves.
type PersonalPerformance struct {
	Records      []Record     `json:"records"`
	Results      []UserResult `json:"results"`
	AverageScore float64      `json:"averageScore"`
}

type Repository interface {
	All() ([]Record, error)
	ByCompliance(compliant bool) ([]Record, error)
	ByUser(userID int64) ([]Record, error)
	ResultsByUser(userID int64) ([]UserResult, error)
}
