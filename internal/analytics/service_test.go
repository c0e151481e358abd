package analytics

import (
	"log/slog"
	"os"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockRepository struct {
	scores      []PerformanceScore
	compliance  []CompliancePercentage
	totals      ComplianceOverview
	average     float64
	employees   int64
	departments []DepartmentHeadcount

	scoreCalls      int
	complianceCalls int
	totalsCalls     int
	dashboardCalls  int
}

func (m *mockRepository) PerformanceScores() ([]PerformanceScore, error) {
	m.scoreCalls++
	return m.scores, nil
}

func (m *mockRepository) ComplianceByDepartment() ([]CompliancePercentage, error) {
	m.complianceCalls++
	out := make([]CompliancePercentage, len(m.compliance))
	copy(out, m.compliance)
	return out, nil
}

func (m *mockRepository) ComplianceTotals() (*ComplianceOverview, error) {
	m.totalsCalls++
	totals := m.totals
	return &totals, nil
}

func (m *mockRepository) AverageScore() (float64, error) {
	m.dashboardCalls++
	return m.average, nil
}

func (m *mockRepository) EmployeeCount() (int64, error) {
	return m.employees, nil
}

func (m *mockRepository) DepartmentHeadcounts() ([]DepartmentHeadcount, error) {
	return m.departments, nil
}

var _ = ginkgo.Describe("AnalyticsService", func() {
	var (
		service *Service
		repo    *mockRepository
		clock   time.Time
	)

	ginkgo.BeforeEach(func() {
		repo = &mockRepository{
			scores: []PerformanceScore{
				{UserID: 1, Email: "alice@acme.test", AverageScore: 85, Assessments: 2},
			},
			compliance: []CompliancePercentage{
				{DepartmentID: 1, DepartmentName: "IT", Total: 4, Compliant: 3},
				{DepartmentID: 2, DepartmentName: "HR", Total: 0, Compliant: 0},
			},
			totals:    ComplianceOverview{Total: 4, Compliant: 3},
			average:   82.5,
			employees: 2,
			departments: []DepartmentHeadcount{
				{ID: 1, Name: "IT", EmployeeCount: 2},
				{ID: 2, Name: "HR", EmployeeCount: 0},
			},
		}
		clock = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		cache := NewCache(5 * time.Minute).WithClock(func() time.Time { return clock })
		lg := slog.New(slog.NewTextHandler(os.Stderr, nil))
		service = NewService(repo, cache, lg)
	})

	ginkgo.Describe("PerformanceScores", func() {
		ginkgo.It("should serve repeated reads from the cache", func() {
			for i := 0; i < 3; i++ {
				scores, err := service.PerformanceScores()
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(scores).To(gomega.HaveLen(1))
			}
			gomega.Expect(repo.scoreCalls).To(gomega.Equal(1))
		})

		ginkgo.It("should reload once the cache entry expires", func() {
			_, err := service.PerformanceScores()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			clock = clock.Add(6 * time.Minute)
			_, err = service.PerformanceScores()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.scoreCalls).To(gomega.Equal(2))
		})
	})

	ginkgo.Describe("CompliancePercentages", func() {
		ginkgo.It("should compute the compliant share per department", func() {
			rows, err := service.CompliancePercentages()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(2))
			gomega.Expect(rows[0].Percentage).To(gomega.Equal(75.0))
		})

		ginkgo.It("should report zero for a department without records", func() {
			rows, err := service.CompliancePercentages()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows[1].Percentage).To(gomega.Equal(0.0))
		})
	})

	ginkgo.Describe("CompliancePercentage", func() {
		ginkgo.It("should compute the overall compliant share", func() {
			overview, err := service.CompliancePercentage()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(overview.Total).To(gomega.Equal(4))
			gomega.Expect(overview.Compliant).To(gomega.Equal(3))
			gomega.Expect(overview.Percentage).To(gomega.Equal(75.0))
		})

		ginkgo.It("should report zero percent without any records", func() {
			repo.totals = ComplianceOverview{}

			overview, err := service.CompliancePercentage()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(overview.Percentage).To(gomega.Equal(0.0))
		})

		ginkgo.It("should serve repeated reads from the cache", func() {
			for i := 0; i < 3; i++ {
				_, err := service.CompliancePercentage()
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			}
			gomega.Expect(repo.totalsCalls).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("DashboardStatistics", func() {
		ginkgo.It("should compose headcount, average score and compliance", func() {
			stats, err := service.DashboardStatistics()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(stats.TotalEmployees).To(gomega.Equal(int64(2)))
			gomega.Expect(stats.AverageScore).To(gomega.Equal(82.5))
			gomega.Expect(stats.CompliancePercentage).To(gomega.Equal(75.0))
			gomega.Expect(stats.Departments).To(gomega.Equal([]DepartmentHeadcount{
				{ID: 1, Name: "IT", EmployeeCount: 2},
				{ID: 2, Name: "HR", EmployeeCount: 0},
			}))
		})

		ginkgo.It("should cache the composed aggregate", func() {
			for i := 0; i < 2; i++ {
				stats, err := service.DashboardStatistics()
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(stats.TotalEmployees).To(gomega.Equal(int64(2)))
			}
			gomega.Expect(repo.dashboardCalls).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("Invalidate", func() {
		ginkgo.It("should force the next read back to the repository", func() {
			_, err := service.DashboardStatistics()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			service.Invalidate()

			_, err = service.DashboardStatistics()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.dashboardCalls).To(gomega.Equal(2))
		})
	})
})
