package analytics

// PerformanceScore is a user's average assessment score.
type PerformanceScore struct {
	UserID       int64   `db:"user_id" json:"userId"`
	Email        string  `db:"email" json:"email"`
	AverageScore float64 `db:"average_score" json:"averageScore"`
	Assessments  int     `db:"assessments" json:"totalAssessments"`
}

// CompliancePercentage is a department's share of compliant performance
// records. Departments without records report zero, not a division error.
type CompliancePercentage struct {
	DepartmentID   int64   `db:"department_id" json:"departmentId"`
	DepartmentName string  `db:"department_name" json:"departmentName"`
	Total          int     `db:"total" json:"total"`
	Compliant      int     `db:"compliant" json:"compliant"`
	Percentage     float64 `db:"-" json:"percentage"`
}

// ComplianceOverview rolls every performance record into one company-wide
// compliance figure. An empty table reports zero percent.
type ComplianceOverview struct {
	Total      int     `db:"total" json:"totalRecords"`
	Compliant  int     `db:"compliant" json:"compliantRecords"`
	Percentage float64 `db:"-" json:"compliancePercentage"`
}

// DepartmentHeadcount is one department's employee count on the dashboard.
type DepartmentHeadcount struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	EmployeeCount int64  `db:"employee_count" json:"employeeCount"`
}

// DashboardStats is the admin dashboard aggregate: workforce size, the
// average over all assessment results, the overall compliance percentage
// and per-department headcounts.
type DashboardStats struct {
	TotalEmployees       int64                 `json:"totalEmployees"`
	AverageScore         float64               `json:"averageScore"`
	CompliancePercentage float64               `json:"compliancePercentage"`
	Departments          []DepartmentHeadcount `json:"departments"`
}

type Repository interface {
	PerformanceScores() ([]PerformanceScore, error)
	ComplianceByDepartment() ([]CompliancePercentage, error)
	ComplianceTotals() (*ComplianceOverview, error)
	AverageScore() (float64, error)
	EmployeeCount() (int64, error)
	DepartmentHeadcounts() ([]DepartmentHeadcount, error)
}
