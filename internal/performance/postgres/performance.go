package postgres

import (
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/compliancehq/compliance-management/internal/performance"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) All() ([]performance.Record, error) {
	return r.query(r.db)
}

func (r *Repository) ByCompliance(compliant bool) ([]performance.Record, error) {
	return r.query(r.db.Where("compliance = ?", compliant))
}

func (r *Repository) ByUser(userID int64) ([]performance.Record, error) {
	return r.query(r.db.Where("user_id = ?", userID))
}

func (r *Repository) query(scope *gorm.DB) ([]performance.Record, error) {
	var rows []datamodel.PerformanceData
	if err := scope.Order("date DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]performance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, performance.Record{
			ID:           row.ID,
			UserID:       row.UserID,
			DepartmentID: row.DepartmentID,
			Metric:       row.Metric,
			Value:        row.Value,
			Compliance:   row.Compliance,
			Date:         row.Date,
		})
	}
	return r.resolveNames(records)
}

// resolveNames backfills user emails and department names in two lookups
// instead of joining per row.
func (r *Repository) resolveNames(records []performance.Record) ([]performance.Record, error) {
	if len(records) == 0 {
		return records, nil
	}

	userIDs := make([]int64, 0, len(records))
	deptIDs := make([]int64, 0, len(records))
	for _, rec := range records {
		userIDs = append(userIDs, rec.UserID)
		deptIDs = append(deptIDs, rec.DepartmentID)
	}

	var users []datamodel.User
	if err := r.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	emails := make(map[int64]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	var departments []datamodel.Department
	if err := r.db.Where("id IN ?", deptIDs).Find(&departments).Error; err != nil {
		return nil, err
	}
	deptNames := make(map[int64]string, len(departments))
	for _, d := range departments {
		deptNames[d.ID] = d.Name
	}

	for i := range records {
		records[i].UserEmail = emails[records[i].UserID]
		records[i].DepartmentName = deptNames[records[i].DepartmentID]
	}
	return records, nil
}

func (r *Repository) ResultsByUser(userID int64) ([]performance.UserResult, error) {
	var rows []datamodel.Result
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []performance.UserResult{}, nil
	}

	assessmentIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		assessmentIDs = append(assessmentIDs, row.AssessmentID)
	}
	var assessments []datamodel.Assessment
	if err := r.db.Where("id IN ?", assessmentIDs).Find(&assessments).Error; err != nil {
		return nil, err
	}
	titles := make(map[int64]string, len(assessments))
	for _, a := range assessments {
		titles[a.ID] = a.Title
	}

	results := make([]performance.UserResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, performance.UserResult{
			AssessmentID:    row.AssessmentID,
			AssessmentTitle: titles[row.AssessmentID],
			Score:           row.Score,
			CreatedAt:       row.CreatedAt,
		})
	}
	return results, nil
}
