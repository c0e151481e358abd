package employee

import "strings"

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type CreateEmployeeDTO struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	DepartmentID int64   `json:"departmentId"`
}

func (d CreateEmployeeDTO) Validate() error {
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return ValidationError{Msg: "a valid email is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	if d.DepartmentID == 0 {
		return ValidationError{Msg: "departmentId is required"}
	}
	return nil
}

// UpdateEmployeeDTO uses pointers so absent fields stay untouched.
type UpdateEmployeeDTO struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	DepartmentID *int64  `json:"departmentId"`
}

func (d UpdateEmployeeDTO) Validate() error {
	if d.FirstName == nil && d.LastName == nil && d.DepartmentID == nil {
		return ValidationError{Msg: "no fields to update"}
	}
	return nil
}
