package content

import "time"

// FileMeta describes an uploaded document attached to a policy or training
// item. Only metadata is persisted; the file itself lives on disk under the
// upload store.
type FileMeta struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

type Policy struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	DepartmentID int64     `json:"departmentId"`
	File         *FileMeta `json:"file,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`

	DepartmentName string `json:"departmentName,omitempty"`
}

type TrainingContent struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	PolicyID  int64     `json:"policyId"`
	File      *FileMeta `json:"file,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	PolicyTitle string `json:"policyTitle,omitempty"`
}

type Repository interface {
	CreatePolicy(policy *Policy) error
	ListPolicies() ([]Policy, error)
	GetPolicy(policyID int64) (*Policy, error)
	PoliciesByDepartment(departmentID int64) ([]Policy, error)
	DeletePolicy(policyID int64) error

	CreateTraining(training *TrainingContent) error
	ListTraining() ([]TrainingContent, error)
	GetTraining(trainingID int64) (*TrainingContent, error)
	TrainingByPolicy(policyID int64) ([]TrainingContent, error)
	DeleteTraining(trainingID int64) error
}

// RecipientSource resolves the employee emails a policy announcement goes to.
type RecipientSource interface {
	EmployeeEmailsByDepartment(departmentID int64) ([]string, error)
}
