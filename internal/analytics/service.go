package analytics

import (
	"fmt"
	"log/slog"
)

// Cache keys. One key per aggregate, invalidated together.
const (
	cacheKeyPerformanceScores     = "performanceScores"
	cacheKeyCompliancePercentages = "compliancePercentages"
	cacheKeyComplianceOverview    = "complianceOverview"
	cacheKeyDashboardStats        = "dashboardStats"
)

type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) PerformanceScores() ([]PerformanceScore, error) {
	if cached, ok := s.cache.Get(cacheKeyPerformanceScores); ok {
		return cached.([]PerformanceScore), nil
	}

	scores, err := s.repo.PerformanceScores()
	if err != nil {
		return nil, fmt.Errorf("load performance scores: %w", err)
	}

	s.cache.Set(cacheKeyPerformanceScores, scores)
	return scores, nil
}

func (s *Service) CompliancePercentages() ([]CompliancePercentage, error) {
	if cached, ok := s.cache.Get(cacheKeyCompliancePercentages); ok {
		return cached.([]CompliancePercentage), nil
	}

	rows, err := s.repo.ComplianceByDepartment()
	if err != nil {
		return nil, fmt.Errorf("load compliance percentages: %w", err)
	}

	for i := range rows {
		if rows[i].Total == 0 {
			rows[i].Percentage = 0
			continue
		}
		rows[i].Percentage = float64(rows[i].Compliant) / float64(rows[i].Total) * 100
	}

	s.cache.Set(cacheKeyCompliancePercentages, rows)
	return rows, nil
}

// CompliancePercentage reports the compliant share over every performance
// record in the company. No records means zero percent, not a division error.
func (s *Service) CompliancePercentage() (*ComplianceOverview, error) {
	if cached, ok := s.cache.Get(cacheKeyComplianceOverview); ok {
		return cached.(*ComplianceOverview), nil
	}

	overview, err := s.repo.ComplianceTotals()
	if err != nil {
		return nil, fmt.Errorf("load compliance overview: %w", err)
	}
	if overview.Total > 0 {
		overview.Percentage = float64(overview.Compliant) / float64(overview.Total) * 100
	}

	s.cache.Set(cacheKeyComplianceOverview, overview)
	return overview, nil
}

// DashboardStatistics composes the admin dashboard: employee count, average
// over all assessment results, the overall compliance percentage and one
// headcount per department.
func (s *Service) DashboardStatistics() (*DashboardStats, error) {
	if cached, ok := s.cache.Get(cacheKeyDashboardStats); ok {
		return cached.(*DashboardStats), nil
	}

	employees, err := s.repo.EmployeeCount()
	if err != nil {
		return nil, fmt.Errorf("load dashboard statistics: %w", err)
	}
	average, err := s.repo.AverageScore()
	if err != nil {
		return nil, fmt.Errorf("load dashboard statistics: %w", err)
	}
	overview, err := s.CompliancePercentage()
	if err != nil {
		return nil, err
	}
	departments, err := s.repo.DepartmentHeadcounts()
	if err != nil {
		return nil, fmt.Errorf("load dashboard statistics: %w", err)
	}

	stats := &DashboardStats{
		TotalEmployees:       employees,
		AverageScore:         average,
		CompliancePercentage: overview.Percentage,
		Departments:          departments,
	}
	s.cache.Set(cacheKeyDashboardStats, stats)
	return stats, nil
}

// Invalidate drops all cached aggregates, forcing the next reads to hit the
// database.
func (s *Service) Invalidate() {
	s.cache.Clear()
}
