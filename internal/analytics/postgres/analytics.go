package postgres

import (
	"github.com/compliancehq/compliance-management/internal/analytics"
	"github.com/jmoiron/sqlx"
)

// Repository runs the aggregate queries on the raw connection; these are
// read-only report shapes with no model to hydrate.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const performanceScoresQuery = `
SELECT r.user_id AS user_id,
       u.email AS email,
       AVG(r.score) AS average_score,
       COUNT(r.id) AS assessments
FROM results r
JOIN users u ON u.id = r.user_id
GROUP BY r.user_id, u.email
ORDER BY r.user_id`

func (r *Repository) PerformanceScores() ([]analytics.PerformanceScore, error) {
	scores := []analytics.PerformanceScore{}
	if err := r.db.Select(&scores, performanceScoresQuery); err != nil {
		return nil, err
	}
	return scores, nil
}

const complianceQuery = `
SELECT d.id AS department_id,
       d.name AS department_name,
       COUNT(p.id) AS total,
       COALESCE(SUM(CASE WHEN p.compliance THEN 1 ELSE 0 END), 0) AS compliant
FROM departments d
LEFT JOIN performance_data p ON p.department_id = d.id
GROUP BY d.id, d.name
ORDER BY d.id`

func (r *Repository) ComplianceByDepartment() ([]analytics.CompliancePercentage, error) {
	rows := []analytics.CompliancePercentage{}
	if err := r.db.Select(&rows, complianceQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

const complianceTotalsQuery = `
SELECT COUNT(*) AS total,
       COALESCE(SUM(CASE WHEN compliance THEN 1 ELSE 0 END), 0) AS compliant
FROM performance_data`

func (r *Repository) ComplianceTotals() (*analytics.ComplianceOverview, error) {
	var overview analytics.ComplianceOverview
	if err := r.db.Get(&overview, complianceTotalsQuery); err != nil {
		return nil, err
	}
	return &overview, nil
}

const averageScoreQuery = `SELECT COALESCE(AVG(score), 0) FROM results`

func (r *Repository) AverageScore() (float64, error) {
	var average float64
	if err := r.db.Get(&average, averageScoreQuery); err != nil {
		return 0, err
	}
	return average, nil
}

const employeeCountQuery = `SELECT COUNT(*) FROM users WHERE role = 'Employee'`

func (r *Repository) EmployeeCount() (int64, error) {
	var count int64
	if err := r.db.Get(&count, employeeCountQuery); err != nil {
		return 0, err
	}
	return count, nil
}

const departmentHeadcountsQuery = `
SELECT d.id AS id,
       d.name AS name,
       COUNT(u.id) AS employee_count
FROM departments d
LEFT JOIN users u ON u.department_id = d.id AND u.role = 'Employee'
GROUP BY d.id, d.name
ORDER BY d.id`

func (r *Repository) DepartmentHeadcounts() ([]analytics.DepartmentHeadcount, error) {
	rows := []analytics.DepartmentHeadcount{}
	if err := r.db.Select(&rows, departmentHeadcountsQuery); err != nil {
		return nil, err
	}
	return rows, nil
}
