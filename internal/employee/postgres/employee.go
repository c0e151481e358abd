package postgres

import (
	"errors"
	"strings"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/compliancehq/compliance-management/internal/employee"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(companyID int64) ([]employee.Employee, error) {
	var rows []datamodel.User
	err := r.db.Preload("Company").Preload("Department").
		Where("company_id = ? AND role = ?", companyID, auth.RoleEmployee).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	employees := make([]employee.Employee, 0, len(rows))
	for i := range rows {
		employees = append(employees, *userToEmployee(&rows[i]))
	}
	return employees, nil
}

// GetByID resolves only Employee accounts; admins and pending users read as
// not found through this repository.
func (r *Repository) GetByID(employeeID int64) (*employee.Employee, error) {
	var row datamodel.User
	err := r.db.Preload("Company").Preload("Department").
		Where("id = ? AND role = ?", employeeID, auth.RoleEmployee).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return userToEmployee(&row), nil
}

func (r *Repository) Create(emp *employee.Employee, passwordHash string) error {
	row := datamodel.User{
		Email:        emp.Email,
		PasswordHash: passwordHash,
		Role:         auth.RoleEmployee,
		CompanyID:    emp.CompanyID,
		DepartmentID: emp.DepartmentID,
		FirstName:    emp.FirstName,
		LastName:     emp.LastName,
	}
	if err := r.db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return internal.ErrDuplicateEmail
		}
		return err
	}
	emp.ID = row.ID
	emp.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) Update(employeeID int64, fields map[string]interface{}) (*employee.Employee, error) {
	res := r.db.Model(&datamodel.User{}).
		Where("id = ? AND role = ?", employeeID, auth.RoleEmployee).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, internal.ErrEmployeeNotFound
	}
	return r.GetByID(employeeID)
}

func (r *Repository) Delete(employeeID int64) error {
	res := r.db.Where("id = ? AND role = ?", employeeID, auth.RoleEmployee).
		Delete(&datamodel.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

func userToEmployee(row *datamodel.User) *employee.Employee {
	emp := &employee.Employee{
		ID:           row.ID,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		CompanyID:    row.CompanyID,
		DepartmentID: row.DepartmentID,
		CreatedAt:    row.CreatedAt,
	}
	if row.Company != nil {
		emp.CompanyName = row.Company.Name
	}
	if row.Department != nil {
		emp.DepartmentName = row.Department.Name
	}
	return emp
}
