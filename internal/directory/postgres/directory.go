package postgres

import (
	"errors"
	"strings"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/compliancehq/compliance-management/internal/directory"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FirstCompany() (*directory.Company, error) {
	var row datamodel.Company
	err := r.db.Order("id").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return companyToDomain(&row), nil
}

func (r *Repository) CreateCompany(company *directory.Company) error {
	row := datamodel.Company{Name: company.Name}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	company.ID = row.ID
	company.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) CreateDepartment(department *directory.Department) error {
	row := datamodel.Department{Name: department.Name, CompanyID: department.CompanyID}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	department.ID = row.ID
	department.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) GetDepartment(departmentID int64) (*directory.Department, error) {
	var row datamodel.Department
	err := r.db.Where("id = ?", departmentID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("Department not found", internal.ErrCodeValidationFailed)
		}
		return nil, err
	}
	return departmentToDomain(&row), nil
}

func (r *Repository) ListDepartments(companyID int64) ([]directory.Department, error) {
	var rows []datamodel.Department
	if err := r.db.Where("company_id = ?", companyID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	departments := make([]directory.Department, 0, len(rows))
	for i := range rows {
		departments = append(departments, *departmentToDomain(&rows[i]))
	}
	return departments, nil
}

func (r *Repository) HasPendingInvitation(email string) (bool, error) {
	var count int64
	err := r.db.Model(&datamodel.Invitation{}).
		Where("email = ? AND status = ?", email, directory.InvitationPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateInvitation(invitation *directory.Invitation) error {
	row := datamodel.Invitation{
		Email:        invitation.Email,
		Status:       invitation.Status,
		CompanyID:    invitation.CompanyID,
		DepartmentID: invitation.DepartmentID,
		InvitedByID:  invitation.InvitedByID,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	invitation.ID = row.ID
	invitation.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) GetInvitation(invitationID int64) (*directory.Invitation, error) {
	var row datamodel.Invitation
	err := r.db.Preload("Company").Preload("Department").
		Where("id = ?", invitationID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrInvalidInvitation
		}
		return nil, err
	}
	return invitationToDomain(&row), nil
}

// RedeemInvitation flips the invitation from Pending to Accepted and creates
// the employee account in one transaction. The conditional update is the
// double-redemption guard: a second redeemer matches zero rows.
func (r *Repository) RedeemInvitation(invitation *directory.Invitation, passwordHash string) (int64, error) {
	var userID int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&datamodel.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, directory.InvitationPending).
			Update("status", directory.InvitationAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrInvalidInvitation
		}

		user := datamodel.User{
			Email:        invitation.Email,
			PasswordHash: passwordHash,
			Role:         auth.RoleEmployee,
			CompanyID:    &invitation.CompanyID,
			DepartmentID: &invitation.DepartmentID,
		}
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return internal.ErrDuplicateEmail
			}
			return err
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

func (r *Repository) CreateUser(email, passwordHash, role string) (int64, error) {
	user := datamodel.User{Email: email, PasswordHash: passwordHash, Role: role}
	if err := r.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, internal.ErrDuplicateEmail
		}
		return 0, err
	}
	return user.ID, nil
}

func (r *Repository) OnboardCompany(userID int64, company *directory.Company, departmentNames []string) ([]directory.Department, error) {
	departments := make([]directory.Department, 0, len(departmentNames))
	err := r.db.Transaction(func(tx *gorm.DB) error {
		companyRow := datamodel.Company{Name: company.Name}
		if err := tx.Create(&companyRow).Error; err != nil {
			return err
		}
		company.ID = companyRow.ID
		company.CreatedAt = companyRow.CreatedAt

		for _, name := range departmentNames {
			row := datamodel.Department{Name: name, CompanyID: companyRow.ID}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			departments = append(departments, *departmentToDomain(&row))
		}

		return tx.Model(&datamodel.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"company_id": companyRow.ID,
				"role":       auth.RoleSuperAdmin,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *Repository) AttachCompany(userID, companyID int64, role string) error {
	return r.db.Model(&datamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"company_id": companyID,
			"role":       role,
		}).Error
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

func companyToDomain(row *datamodel.Company) *directory.Company {
	return &directory.Company{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
}

func departmentToDomain(row *datamodel.Department) *directory.Department {
	return &directory.Department{
		ID:        row.ID,
		Name:      row.Name,
		CompanyID: row.CompanyID,
		CreatedAt: row.CreatedAt,
	}
}

func invitationToDomain(row *datamodel.Invitation) *directory.Invitation {
	inv := &directory.Invitation{
		ID:           row.ID,
		Email:        row.Email,
		Status:       row.Status,
		CompanyID:    row.CompanyID,
		DepartmentID: row.DepartmentID,
		InvitedByID:  row.InvitedByID,
		CreatedAt:    row.CreatedAt,
	}
	if row.Company != nil {
		inv.CompanyName = row.Company.Name
	}
	if row.Department != nil {
		inv.DepartmentName = row.Department.Name
	}
	return inv
}
