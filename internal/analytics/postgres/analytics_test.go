package postgres_test

import (
	"testing"
	"time"

	"github.com/compliancehq/compliance-management/internal/analytics"
	"github.com/compliancehq/compliance-management/internal/analytics/postgres"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/jmoiron/sqlx"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestAnalyticsRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Analytics Repository Suite")
}

var _ = ginkgo.Describe("AnalyticsRepository", func() {
	var (
		db   *gorm.DB
		repo *postgres.Repository

		itDeptID int64
		hrDeptID int64
		aliceID  int64
		bobID    int64
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		sqlDB, err := db.DB()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(
			&datamodel.Company{}, &datamodel.Department{}, &datamodel.User{},
			&datamodel.Policy{}, &datamodel.TrainingContent{},
			&datamodel.Assessment{}, &datamodel.Question{}, &datamodel.Result{},
			&datamodel.PerformanceData{},
		)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = postgres.NewRepository(sqlx.NewDb(sqlDB, "sqlite3"))

		company := datamodel.Company{Name: "Acme Corp"}
		gomega.Expect(db.Create(&company).Error).To(gomega.Succeed())

		it := datamodel.Department{Name: "IT", CompanyID: company.ID}
		hr := datamodel.Department{Name: "HR", CompanyID: company.ID}
		gomega.Expect(db.Create(&it).Error).To(gomega.Succeed())
		gomega.Expect(db.Create(&hr).Error).To(gomega.Succeed())
		itDeptID = it.ID
		hrDeptID = hr.ID

		alice := datamodel.User{Email: "alice@acme.test", Role: auth.RoleEmployee, CompanyID: &company.ID, DepartmentID: &itDeptID}
		bob := datamodel.User{Email: "bob@acme.test", Role: auth.RoleEmployee, CompanyID: &company.ID, DepartmentID: &itDeptID}
		gomega.Expect(db.Create(&alice).Error).To(gomega.Succeed())
		gomega.Expect(db.Create(&bob).Error).To(gomega.Succeed())
		aliceID = alice.ID
		bobID = bob.ID
	})

	seedResults := func() {
		policy := datamodel.Policy{Title: "Acceptable Use", DepartmentID: itDeptID}
		gomega.Expect(db.Create(&policy).Error).To(gomega.Succeed())
		a1 := datamodel.Assessment{Title: "A1", PolicyID: policy.ID}
		a2 := datamodel.Assessment{Title: "A2", PolicyID: policy.ID}
		gomega.Expect(db.Create(&a1).Error).To(gomega.Succeed())
		gomega.Expect(db.Create(&a2).Error).To(gomega.Succeed())

		results := []datamodel.Result{
			{UserID: aliceID, AssessmentID: a1.ID, Score: 80},
			{UserID: aliceID, AssessmentID: a2.ID, Score: 90},
			{UserID: bobID, AssessmentID: a1.ID, Score: 70},
		}
		for i := range results {
			gomega.Expect(db.Create(&results[i]).Error).To(gomega.Succeed())
		}
	}

	ginkgo.Describe("PerformanceScores", func() {
		ginkgo.It("should average each user's scores", func() {
			seedResults()

			scores, err := repo.PerformanceScores()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(scores).To(gomega.Equal([]analytics.PerformanceScore{
				{UserID: aliceID, Email: "alice@acme.test", AverageScore: 85, Assessments: 2},
				{UserID: bobID, Email: "bob@acme.test", AverageScore: 70, Assessments: 1},
			}))
		})

		ginkgo.It("should return an empty slice without results", func() {
			scores, err := repo.PerformanceScores()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(scores).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ComplianceByDepartment", func() {
		ginkgo.It("should count compliant records per department, zero included", func() {
			records := []datamodel.PerformanceData{
				{UserID: aliceID, DepartmentID: itDeptID, Metric: "training", Value: 1, Compliance: true, Date: time.Now()},
				{UserID: aliceID, DepartmentID: itDeptID, Metric: "training", Value: 1, Compliance: true, Date: time.Now()},
				{UserID: bobID, DepartmentID: itDeptID, Metric: "training", Value: 0, Compliance: false, Date: time.Now()},
			}
			for i := range records {
				gomega.Expect(db.Create(&records[i]).Error).To(gomega.Succeed())
			}

			rows, err := repo.ComplianceByDepartment()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(2))

			gomega.Expect(rows[0].DepartmentID).To(gomega.Equal(itDeptID))
			gomega.Expect(rows[0].Total).To(gomega.Equal(3))
			gomega.Expect(rows[0].Compliant).To(gomega.Equal(2))

			gomega.Expect(rows[1].DepartmentID).To(gomega.Equal(hrDeptID))
			gomega.Expect(rows[1].Total).To(gomega.Equal(0))
			gomega.Expect(rows[1].Compliant).To(gomega.Equal(0))
		})
	})

	ginkgo.Describe("ComplianceTotals", func() {
		ginkgo.It("should roll every record into one total", func() {
			records := []datamodel.PerformanceData{
				{UserID: aliceID, DepartmentID: itDeptID, Metric: "training", Value: 1, Compliance: true, Date: time.Now()},
				{UserID: bobID, DepartmentID: itDeptID, Metric: "training", Value: 0, Compliance: false, Date: time.Now()},
				{UserID: bobID, DepartmentID: hrDeptID, Metric: "audit", Value: 1, Compliance: true, Date: time.Now()},
			}
			for i := range records {
				gomega.Expect(db.Create(&records[i]).Error).To(gomega.Succeed())
			}

			overview, err := repo.ComplianceTotals()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(overview.Total).To(gomega.Equal(3))
			gomega.Expect(overview.Compliant).To(gomega.Equal(2))
		})

		ginkgo.It("should report zero totals on an empty table", func() {
			overview, err := repo.ComplianceTotals()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(overview.Total).To(gomega.Equal(0))
			gomega.Expect(overview.Compliant).To(gomega.Equal(0))
		})
	})

	ginkgo.Describe("AverageScore", func() {
		ginkgo.It("should average over all results", func() {
			seedResults()

			average, err := repo.AverageScore()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(average).To(gomega.Equal(80.0))
		})

		ginkgo.It("should report zero without results", func() {
			average, err := repo.AverageScore()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(average).To(gomega.Equal(0.0))
		})
	})

	ginkgo.Describe("EmployeeCount", func() {
		ginkgo.It("should count only employees among users", func() {
			companyID := int64(1)
			admin := datamodel.User{Email: "admin@acme.test", Role: auth.RoleSuperAdmin, CompanyID: &companyID}
			gomega.Expect(db.Create(&admin).Error).To(gomega.Succeed())

			count, err := repo.EmployeeCount()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(int64(2)))
		})
	})

	ginkgo.Describe("DepartmentHeadcounts", func() {
		ginkgo.It("should count employees per department, empty ones included", func() {
			counts, err := repo.DepartmentHeadcounts()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(counts).To(gomega.Equal([]analytics.DepartmentHeadcount{
				{ID: itDeptID, Name: "IT", EmployeeCount: 2},
				{ID: hrDeptID, Name: "HR", EmployeeCount: 0},
			}))
		})

		ginkgo.It("should not count admins against a department", func() {
			companyID := int64(1)
			admin := datamodel.User{Email: "admin@acme.test", Role: auth.RoleSuperAdmin, CompanyID: &companyID, DepartmentID: &itDeptID}
			gomega.Expect(db.Create(&admin).Error).To(gomega.Succeed())

			counts, err := repo.DepartmentHeadcounts()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(counts[0].EmployeeCount).To(gomega.Equal(int64(2)))
		})
	})
})
