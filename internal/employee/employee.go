package employee

import "time"

// Employee is the directory view of a user with the Employee role. Accounts
// holding other roles never surface through this package.
type Employee struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    *string   `json:"firstName"`
	LastName     *string   `json:"lastName"`
	CompanyID    *int64    `json:"companyId"`
	DepartmentID *int64    `json:"departmentId"`
	CreatedAt    time.Time `json:"createdAt"`

	CompanyName    string `json:"companyName,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
}

type Repository interface {
	List(companyID int64) ([]Employee, error)
	GetByID(employeeID int64) (*Employee, error)
	Create(employee *Employee, passwordHash string) error
	Update(employeeID int64, fields map[string]interface{}) (*Employee, error)
	Delete(employeeID int64) error
}
