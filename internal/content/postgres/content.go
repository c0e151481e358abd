package postgres

import (
	"errors"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/content"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreatePolicy(policy *content.Policy) error {
	row := datamodel.Policy{
		Title:        policy.Title,
		Content:      policy.Content,
		DepartmentID: policy.DepartmentID,
	}
	applyFileMeta(policy.File, &row.FilePath, &row.FileName, &row.FileSize, &row.MimeType)

	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	policy.ID = row.ID
	policy.CreatedAt = row.CreatedAt

	var dept datamodel.Department
	if err := r.db.Where("id = ?", row.DepartmentID).First(&dept).Error; err == nil {
		policy.DepartmentName = dept.Name
	}
	return nil
}

func (r *Repository) ListPolicies() ([]content.Policy, error) {
	var rows []datamodel.Policy
	if err := r.db.Preload("Department").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	policies := make([]content.Policy, 0, len(rows))
	for i := range rows {
		policies = append(policies, *policyToDomain(&rows[i]))
	}
	return policies, nil
}

func (r *Repository) GetPolicy(policyID int64) (*content.Policy, error) {
	var row datamodel.Policy
	err := r.db.Preload("Department").Where("id = ?", policyID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPolicyNotFound
		}
		return nil, err
	}
	return policyToDomain(&row), nil
}

func (r *Repository) PoliciesByDepartment(departmentID int64) ([]content.Policy, error) {
	var rows []datamodel.Policy
	err := r.db.Preload("Department").
		Where("department_id = ?", departmentID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	policies := make([]content.Policy, 0, len(rows))
	for i := range rows {
		policies = append(policies, *policyToDomain(&rows[i]))
	}
	return policies, nil
}

func (r *Repository) DeletePolicy(policyID int64) error {
	res := r.db.Where("id = ?", policyID).Delete(&datamodel.Policy{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrPolicyNotFound
	}
	return nil
}

func (r *Repository) CreateTraining(training *content.TrainingContent) error {
	row := datamodel.TrainingContent{
		Title:    training.Title,
		Content:  training.Content,
		PolicyID: training.PolicyID,
	}
	applyFileMeta(training.File, &row.FilePath, &row.FileName, &row.FileSize, &row.MimeType)

	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	training.ID = row.ID
	training.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) ListTraining() ([]content.TrainingContent, error) {
	var rows []datamodel.TrainingContent
	if err := r.db.Preload("Policy").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]content.TrainingContent, 0, len(rows))
	for i := range rows {
		items = append(items, *trainingToDomain(&rows[i]))
	}
	return items, nil
}

func (r *Repository) GetTraining(trainingID int64) (*content.TrainingContent, error) {
	var row datamodel.TrainingContent
	err := r.db.Preload("Policy").Where("id = ?", trainingID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTrainingNotFound
		}
		return nil, err
	}
	return trainingToDomain(&row), nil
}

func (r *Repository) TrainingByPolicy(policyID int64) ([]content.TrainingContent, error) {
	var rows []datamodel.TrainingContent
	err := r.db.Preload("Policy").
		Where("policy_id = ?", policyID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]content.TrainingContent, 0, len(rows))
	for i := range rows {
		items = append(items, *trainingToDomain(&rows[i]))
	}
	return items, nil
}

func (r *Repository) DeleteTraining(trainingID int64) error {
	res := r.db.Where("id = ?", trainingID).Delete(&datamodel.TrainingContent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrTrainingNotFound
	}
	return nil
}

// EmployeeEmailsByDepartment satisfies content.RecipientSource.
func (r *Repository) EmployeeEmailsByDepartment(departmentID int64) ([]string, error) {
	var emails []string
	err := r.db.Model(&datamodel.User{}).
		Where("department_id = ? AND role = ?", departmentID, auth.RoleEmployee).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func applyFileMeta(meta *content.FileMeta, path, name **string, size **int64, mimeType **string) {
	if meta == nil {
		return
	}
	*path = &meta.Path
	*name = &meta.Name
	*size = &meta.Size
	*mimeType = &meta.MimeType
}

func policyToDomain(row *datamodel.Policy) *content.Policy {
	policy := &content.Policy{
		ID:           row.ID,
		Title:        row.Title,
		Content:      row.Content,
		DepartmentID: row.DepartmentID,
		CreatedAt:    row.CreatedAt,
		File:         fileMeta(row.FilePath, row.FileName, row.FileSize, row.MimeType),
	}
	if row.Department != nil {
		policy.DepartmentName = row.Department.Name
	}
	return policy
}

func trainingToDomain(row *datamodel.TrainingContent) *content.TrainingContent {
	training := &content.TrainingContent{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		PolicyID:  row.PolicyID,
		CreatedAt: row.CreatedAt,
		File:      fileMeta(row.FilePath, row.FileName, row.FileSize, row.MimeType),
	}
	if row.Policy != nil {
		training.PolicyTitle = row.Policy.Title
	}
	return training
}

func fileMeta(path, name *string, size *int64, mimeType *string) *content.FileMeta {
	if path == nil {
		return nil
	}
	meta := &content.FileMeta{Path: *path}
	if name != nil {
		meta.Name = *name
	}
	if size != nil {
		meta.Size = *size
	}
	if mimeType != nil {
		meta.MimeType = *mimeType
	}
	return meta
}
