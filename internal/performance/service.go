package performance

import (
	"fmt"
	"log/slog"

	"github.com/compliancehq/compliance-management/internal"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) AllRecords() ([]Record, error) {
	return s.repo.All()
}

func (s *Service) ComplianceRecords(compliant bool) ([]Record, error) {
	return s.repo.ByCompliance(compliant)
}

// Personal assembles the caller's own records and assessment results.
func (s *Service) Personal(principal *internal.Principal) (*PersonalPerformance, error) {
	records, err := s.repo.ByUser(principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("load personal records: %w", err)
	}

	results, err := s.repo.ResultsByUser(principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("load personal results: %w", err)
	}

	var average float64
	if len(results) > 0 {
		var sum float64
		for _, r := range results {
			sum += r.Score
		}
		average = sum / float64(len(results))
	}

	return &PersonalPerformance{
		Records:      records,
		Results:      results,
		AverageScore: average,
	}, nil
}
