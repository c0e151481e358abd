package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/assessment"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List() ([]assessment.Assessment, error) {
	var rows []datamodel.Assessment
	err := r.db.Preload("Policy").Preload("Questions").Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	assessments := make([]assessment.Assessment, 0, len(rows))
	for i := range rows {
		assessments = append(assessments, *toDomain(&rows[i]))
	}
	return assessments, nil
}

func (r *Repository) GetByID(assessmentID int64) (*assessment.Assessment, error) {
	var row datamodel.Assessment
	err := r.db.Preload("Policy").Preload("Questions").
		Where("id = ?", assessmentID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAssessmentNotFound
		}
		return nil, err
	}
	return toDomain(&row), nil
}

func (r *Repository) Create(a *assessment.Assessment) error {
	var policy datamodel.Policy
	if err := r.db.Where("id = ?", a.PolicyID).First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return internal.ErrPolicyNotFound
		}
		return err
	}

	row := datamodel.Assessment{Title: a.Title, PolicyID: a.PolicyID}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	a.PolicyTitle = policy.Title
	a.DepartmentID = policy.DepartmentID
	return nil
}

func (r *Repository) Delete(assessmentID int64) error {
	res := r.db.Where("id = ?", assessmentID).Delete(&datamodel.Assessment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrAssessmentNotFound
	}
	return nil
}

func (r *Repository) AddQuestion(question *assessment.Question) error {
	row := datamodel.Question{Text: question.Text, AssessmentID: question.AssessmentID}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	question.ID = row.ID
	return nil
}

func (r *Repository) Questions(assessmentID int64) ([]assessment.Question, error) {
	var rows []datamodel.Question
	err := r.db.Where("assessment_id = ?", assessmentID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	questions := make([]assessment.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, assessment.Question{
			ID:           row.ID,
			Text:         row.Text,
			AssessmentID: row.AssessmentID,
		})
	}
	return questions, nil
}

func (r *Repository) SetSchedule(assessmentID int64, scheduledAt time.Time) error {
	res := r.db.Model(&datamodel.Assessment{}).
		Where("id = ?", assessmentID).
		Update("scheduled_at", scheduledAt)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrAssessmentNotFound
	}
	return nil
}

func (r *Repository) AvailableForUser(userID, departmentID int64, now time.Time) ([]assessment.Assessment, error) {
	var rows []datamodel.Assessment
	err := r.db.
		Joins("JOIN policies ON policies.id = assessments.policy_id").
		Where("policies.department_id = ?", departmentID).
		Where("assessments.scheduled_at IS NOT NULL AND assessments.scheduled_at <= ?", now).
		Where("NOT EXISTS (SELECT 1 FROM results WHERE results.user_id = ? AND results.assessment_id = assessments.id)", userID).
		Preload("Policy").Preload("Questions").
		Order("assessments.scheduled_at, assessments.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	assessments := make([]assessment.Assessment, 0, len(rows))
	for i := range rows {
		assessments = append(assessments, *toDomain(&rows[i]))
	}
	return assessments, nil
}

// Submit re-validates availability and writes the result in one transaction.
// The unique index on (user_id, assessment_id) is the last line of defense
// against two submissions racing past the count check.
func (r *Repository) Submit(userID, departmentID, assessmentID int64, answerCount int, now time.Time) (*assessment.Result, error) {
	var result *assessment.Result
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row datamodel.Assessment
		err := tx.Preload("Policy").Preload("Questions").
			Where("id = ?", assessmentID).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrAssessmentNotFound
			}
			return err
		}

		if row.Policy == nil || row.Policy.DepartmentID != departmentID {
			return internal.ErrAssessmentNotAvailable
		}
		if row.ScheduledAt == nil || row.ScheduledAt.After(now) {
			return internal.ErrAssessmentNotAvailable
		}

		var taken int64
		err = tx.Model(&datamodel.Result{}).
			Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return internal.ErrAssessmentNotAvailable
		}

		resultRow := datamodel.Result{
			UserID:       userID,
			AssessmentID: assessmentID,
			Score:        assessment.Score(answerCount, len(row.Questions)),
		}
		if err := tx.Create(&resultRow).Error; err != nil {
			if isUniqueViolation(err) {
				return internal.ErrAssessmentNotAvailable
			}
			return err
		}

		result = &assessment.Result{
			ID:           resultRow.ID,
			UserID:       resultRow.UserID,
			AssessmentID: resultRow.AssessmentID,
			Score:        resultRow.Score,
			CreatedAt:    resultRow.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EmployeeEmailsByDepartment satisfies assessment.RecipientSource.
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

func toDomain(row *datamodel.Assessment) *assessment.Assessment {
	a := &assessment.Assessment{
		ID:            row.ID,
		Title:         row.Title,
		PolicyID:      row.PolicyID,
		ScheduledAt:   row.ScheduledAt,
		CreatedAt:     row.CreatedAt,
		QuestionCount: len(row.Questions),
	}
	for _, q := range row.Questions {
		a.Questions = append(a.Questions, assessment.Question{
			ID:           q.ID,
			Text:         q.Text,
			AssessmentID: q.AssessmentID,
		})
	}
	if row.Policy != nil {
		a.PolicyTitle = row.Policy.Title
		a.DepartmentID = row.Policy.DepartmentID
	}
	return a
}
