package postgres

import (
	"errors"
	"strings"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/auth"
	"gorm.io/gorm"
)

// Repository implements auth.UserRepository over the users table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRow struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	CompanyID    *int64
	DepartmentID *int64
}

func (userRow) TableName() string { return "users" }

func (r *Repository) GetByEmail(email string) (*auth.Account, error) {
	var row userRow
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return rowToAccount(&row), nil
}

func (r *Repository) GetByID(userID int64) (*auth.Account, error) {
	var row userRow
	err := r.db.Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return rowToAccount(&row), nil
}

func (r *Repository) CreateAccount(account *auth.Account) error {
	row := &userRow{
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		Role:         account.Role,
		CompanyID:    account.CompanyID,
		DepartmentID: account.DepartmentID,
	}
	if err := r.db.Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return internal.ErrDuplicateEmail
		}
		return err
	}
	account.ID = row.ID
	return nil
}

// isUniqueViolation matches both the postgres and sqlite phrasings so the
// same repositories back production and in-memory test databases.
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

func rowToAccount(row *userRow) *auth.Account {
	return &auth.Account{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		CompanyID:    row.CompanyID,
		DepartmentID: row.DepartmentID,
	}
}
