package postgres_test

import (
	"testing"
	"time"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/assessment"
	"github.com/compliancehq/compliance-management/internal/assessment/postgres"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestAssessmentRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Assessment Repository Suite")
}

var _ = ginkgo.Describe("AssessmentRepository", func() {
	var (
		db   *gorm.DB
		repo *postgres.Repository
		now  time.Time

		itDeptID int64
		hrDeptID int64
		policyID int64
		bobID    int64
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		// One connection only: every pooled connection to :memory: would
		// otherwise get its own empty database.
		sqlDB, err := db.DB()
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		err = db.AutoMigrate(
			&datamodel.Company{}, &datamodel.Department{}, &datamodel.User{},
			&datamodel.Policy{}, &datamodel.Assessment{}, &datamodel.Question{},
			&datamodel.Result{},
		)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = postgres.NewRepository(db)
		now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		company := datamodel.Company{Name: "Acme Corp"}
		gomega.Expect(db.Create(&company).Error).To(gomega.Succeed())

		it := datamodel.Department{Name: "IT", CompanyID: company.ID}
		hr := datamodel.Department{Name: "HR", CompanyID: company.ID}
		gomega.Expect(db.Create(&it).Error).To(gomega.Succeed())
		gomega.Expect(db.Create(&hr).Error).To(gomega.Succeed())
		itDeptID = it.ID
		hrDeptID = hr.ID

		bob := datamodel.User{Email: "bob@acme.test", Role: auth.RoleEmployee, CompanyID: &company.ID, DepartmentID: &itDeptID}
		gomega.Expect(db.Create(&bob).Error).To(gomega.Succeed())
		bobID = bob.ID

		policy := datamodel.Policy{Title: "Acceptable Use", Content: "No funny business.", DepartmentID: itDeptID}
		gomega.Expect(db.Create(&policy).Error).To(gomega.Succeed())
		policyID = policy.ID
	})

	createAssessment := func(title string, scheduledAt *time.Time, questionCount int) int64 {
		row := datamodel.Assessment{Title: title, PolicyID: policyID, ScheduledAt: scheduledAt}
		gomega.Expect(db.Create(&row).Error).To(gomega.Succeed())
		for i := 0; i < questionCount; i++ {
			q := datamodel.Question{Text: "q", AssessmentID: row.ID}
			gomega.Expect(db.Create(&q).Error).To(gomega.Succeed())
		}
		return row.ID
	}

	ginkgo.Describe("Create", func() {
		ginkgo.It("should denormalize the policy title and department", func() {
			a := &assessment.Assessment{Title: "Security Basics", PolicyID: policyID}
			gomega.Expect(repo.Create(a)).To(gomega.Succeed())
			gomega.Expect(a.ID).ToNot(gomega.BeZero())
			gomega.Expect(a.PolicyTitle).To(gomega.Equal("Acceptable Use"))
			gomega.Expect(a.DepartmentID).To(gomega.Equal(itDeptID))
		})

		ginkgo.It("should reject an unknown policy", func() {
			a := &assessment.Assessment{Title: "Orphan", PolicyID: 9999}
			gomega.Expect(repo.Create(a)).To(gomega.Equal(internal.ErrPolicyNotFound))
		})
	})

	ginkgo.Describe("AvailableForUser", func() {
		ginkgo.It("should return open assessments the user has not taken", func() {
			past := now.Add(-time.Hour)
			openID := createAssessment("Open", &past, 2)

			future := now.Add(time.Hour)
			createAssessment("Future", &future, 2)
			createAssessment("Unscheduled", nil, 2)

			takenID := createAssessment("Taken", &past, 2)
			_, err := repo.Submit(bobID, itDeptID, takenID, 2, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rows, err := repo.AvailableForUser(bobID, itDeptID, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(1))
			gomega.Expect(rows[0].ID).To(gomega.Equal(openID))
			gomega.Expect(rows[0].QuestionCount).To(gomega.Equal(2))
			gomega.Expect(rows[0].PolicyTitle).To(gomega.Equal("Acceptable Use"))
		})

		ginkgo.It("should nest the questions so the employee can answer immediately", func() {
			past := now.Add(-time.Hour)
			id := createAssessment("Open", &past, 2)

			rows, err := repo.AvailableForUser(bobID, itDeptID, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(1))
			gomega.Expect(rows[0].Questions).To(gomega.HaveLen(2))
			gomega.Expect(rows[0].Questions[0].Text).To(gomega.Equal("q"))
			gomega.Expect(rows[0].Questions[0].AssessmentID).To(gomega.Equal(id))
		})

		ginkgo.It("should include an assessment scheduled exactly for now", func() {
			boundary := now
			id := createAssessment("Boundary", &boundary, 1)

			rows, err := repo.AvailableForUser(bobID, itDeptID, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(1))
			gomega.Expect(rows[0].ID).To(gomega.Equal(id))
		})

		ginkgo.It("should return nothing for another department", func() {
			past := now.Add(-time.Hour)
			createAssessment("Open", &past, 2)

			rows, err := repo.AvailableForUser(bobID, hrDeptID, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Submit", func() {
		ginkgo.It("should score by the answered fraction of questions", func() {
			past := now.Add(-time.Hour)
			id := createAssessment("Open", &past, 4)

			result, err := repo.Submit(bobID, itDeptID, id, 3, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Score).To(gomega.Equal(75.0))
			gomega.Expect(result.UserID).To(gomega.Equal(bobID))
		})

		ginkgo.It("should score zero for an assessment without questions", func() {
			past := now.Add(-time.Hour)
			id := createAssessment("Empty", &past, 0)

			result, err := repo.Submit(bobID, itDeptID, id, 0, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Score).To(gomega.Equal(0.0))
		})

		ginkgo.It("should reject a second submission by the same user", func() {
			past := now.Add(-time.Hour)
			id := createAssessment("Open", &past, 2)

			_, err := repo.Submit(bobID, itDeptID, id, 2, now)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = repo.Submit(bobID, itDeptID, id, 1, now)
			gomega.Expect(err).To(gomega.Equal(internal.ErrAssessmentNotAvailable))
		})

		ginkgo.It("should reject a submission from the wrong department", func() {
			past := now.Add(-time.Hour)
			id := createAssessment("Open", &past, 2)

			_, err := repo.Submit(bobID, hrDeptID, id, 2, now)
			gomega.Expect(err).To(gomega.Equal(internal.ErrAssessmentNotAvailable))
		})

		ginkgo.It("should reject a submission before the schedule", func() {
			future := now.Add(time.Hour)
			id := createAssessment("Future", &future, 2)

			_, err := repo.Submit(bobID, itDeptID, id, 2, now)
			gomega.Expect(err).To(gomega.Equal(internal.ErrAssessmentNotAvailable))
		})

		ginkgo.It("should reject a submission for an unscheduled assessment", func() {
			id := createAssessment("Unscheduled", nil, 2)

			_, err := repo.Submit(bobID, itDeptID, id, 2, now)
			gomega.Expect(err).To(gomega.Equal(internal.ErrAssessmentNotAvailable))
		})
	})

	ginkgo.Describe("Schedule and delete", func() {
		ginkgo.It("should stamp the schedule", func() {
			id := createAssessment("Unscheduled", nil, 1)
			at := now.Add(2 * time.Hour)

			gomega.Expect(repo.SetSchedule(id, at)).To(gomega.Succeed())

			got, err := repo.GetByID(id)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.ScheduledAt).ToNot(gomega.BeNil())
			gomega.Expect(got.ScheduledAt.Equal(at)).To(gomega.BeTrue())
		})

		ginkgo.It("should fail scheduling an unknown assessment", func() {
			gomega.Expect(repo.SetSchedule(9999, now)).To(gomega.Equal(internal.ErrAssessmentNotFound))
		})

		ginkgo.It("should delete and then miss", func() {
			id := createAssessment("Doomed", nil, 0)
			gomega.Expect(repo.Delete(id)).To(gomega.Succeed())

			_, err := repo.GetByID(id)
			gomega.Expect(err).To(gomega.Equal(internal.ErrAssessmentNotFound))
			gomega.Expect(repo.Delete(id)).To(gomega.Equal(internal.ErrAssessmentNotFound))
		})
	})

	ginkgo.Describe("EmployeeEmailsByDepartment", func() {
		ginkgo.It("should only pick employees of the department", func() {
			companyID := int64(1)
			admin := datamodel.User{Email: "admin@acme.test", Role: auth.RoleSuperAdmin, CompanyID: &companyID, DepartmentID: &itDeptID}
			gomega.Expect(db.Create(&admin).Error).To(gomega.Succeed())
			carol := datamodel.User{Email: "carol@acme.test", Role: auth.RoleEmployee, CompanyID: &companyID, DepartmentID: &hrDeptID}
			gomega.Expect(db.Create(&carol).Error).To(gomega.Succeed())

			emails, err := repo.EmployeeEmailsByDepartment(itDeptID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(emails).To(gomega.ConsistOf("bob@acme.test"))
		})
	})
})
