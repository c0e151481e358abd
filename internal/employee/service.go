package employee

import (
	"fmt"
	"log/slog"

	"github.com/compliancehq/compliance-management/internal"
)

// PasswordHasher is satisfied by the auth service.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, logger: logger}
}

// List returns every Employee of the caller's company with company and
// department names resolved.
func (s *Service) List(principal *internal.Principal) ([]Employee, error) {
	if principal.CompanyID == nil {
		return []Employee{}, nil
	}
	return s.repo.List(*principal.CompanyID)
}

func (s *Service) GetByID(employeeID int64) (*Employee, error) {
	return s.repo.GetByID(employeeID)
}

// Create adds an employee account directly, bypassing the invitation flow.
func (s *Service) Create(principal *internal.Principal, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if principal.CompanyID == nil {
		return nil, ValidationError{Msg: "account has no company"}
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	emp := &Employee{
		Email:        dto.Email,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		CompanyID:    principal.CompanyID,
		DepartmentID: &dto.DepartmentID,
	}
	if err := s.repo.Create(emp, hash); err != nil {
		return nil, err
	}

	s.logger.Info("employee created", "employee_id", emp.ID, "department_id", dto.DepartmentID)
	return emp, nil
}

func (s *Service) Update(employeeID int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if dto.FirstName != nil {
		fields["first_name"] = *dto.FirstName
	}
	if dto.LastName != nil {
		fields["last_name"] = *dto.LastName
	}
	if dto.DepartmentID != nil {
		fields["department_id"] = *dto.DepartmentID
	}

	return s.repo.Update(employeeID, fields)
}

func (s *Service) Delete(employeeID int64) error {
	if err := s.repo.Delete(employeeID); err != nil {
		return err
	}
	s.logger.Info("employee deleted", "employee_id", employeeID)
	return nil
}
