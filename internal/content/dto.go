package content

import "strings"

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type CreatePolicyDTO struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	DepartmentID int64  `json:"departmentId"`
}

func (d CreatePolicyDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Msg: "title is required"}
	}
	if d.DepartmentID == 0 {
		return ValidationError{Msg: "departmentId is required"}
	}
	return nil
}

type CreateTrainingDTO struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	PolicyID int64  `json:"policyId"`
}

func (d CreateTrainingDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Msg: "title is required"}
	}
	if d.PolicyID == 0 {
		return ValidationError{Msg: "policyId is required"}
	}
	return nil
}
