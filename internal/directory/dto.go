package directory

import (
	"strings"

	"github.com/compliancehq/compliance-management/internal/auth"
)

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type RegisterCompanyDTO struct {
	Name string `json:"name"`
}

func (d RegisterCompanyDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "company name is required"}
	}
	return nil
}

type CreateDepartmentDTO struct {
	Name string `json:"name"`
}

func (d CreateDepartmentDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "department name is required"}
	}
	return nil
}

type InviteDTO struct {
	Email        string `json:"email"`
	DepartmentID int64  `json:"departmentId"`
}

func (d InviteDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if !strings.Contains(d.Email, "@") {
		return ValidationError{Msg: "email is invalid"}
	}
	if d.DepartmentID == 0 {
		return ValidationError{Msg: "departmentId is required"}
	}
	return nil
}

type AcceptInvitationDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (d AcceptInvitationDTO) Validate() error {
	if d.Token == "" {
		return ValidationError{Msg: "token is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	return nil
}

type OnboardDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d OnboardDTO) Validate() error {
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return ValidationError{Msg: "a valid email is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	return nil
}

type CompleteOnboardingDTO struct {
	CompanyName string   `json:"companyName"`
	Departments []string `json:"departments"`
}

func (d CompleteOnboardingDTO) Validate() error {
	if strings.TrimSpace(d.CompanyName) == "" {
		return ValidationError{Msg: "companyName is required"}
	}
	for _, name := range d.Departments {
		if strings.TrimSpace(name) == "" {
			return ValidationError{Msg: "department names must not be empty"}
		}
	}
	return nil
}

type WizardDepartmentsDTO struct {
	Departments []string `json:"departments"`
}

func (d WizardDepartmentsDTO) Validate() error {
	if len(d.Departments) == 0 {
		return ValidationError{Msg: "at least one department is required"}
	}
	for _, name := range d.Departments {
		if strings.TrimSpace(name) == "" {
			return ValidationError{Msg: "department names must not be empty"}
		}
	}
	return nil
}

// InvitationResponse echoes the stored invitation together with the signed
// token; the same token also goes out by email.
type InvitationResponse struct {
	Invitation *Invitation `json:"invitation"`
	Token      string      `json:"token"`
}

// OnboardResponse is returned both by first-time onboarding and invitation
// acceptance: a fresh session plus where the frontend should go next.
type OnboardResponse struct {
	auth.AuthTokens
	User     auth.SessionUser `json:"user"`
	Redirect string           `json:"redirect,omitempty"`
}

type OnboardingResult struct {
	Company     *Company     `json:"company"`
	Departments []Department `json:"departments"`
}
