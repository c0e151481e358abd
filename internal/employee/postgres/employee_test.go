package postgres_test

import (
	"testing"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/compliancehq/compliance-management/internal/employee"
	"github.com/compliancehq/compliance-management/internal/employee/postgres"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestEmployeeRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Employee Repository Suite")
}

var _ = ginkgo.Describe("EmployeeRepository", func() {
	var (
		db   *gorm.DB
		repo *postgres.Repository

		companyID int64
		itDeptID  int64
		adminID   int64
		bobID     int64
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

		err = db.AutoMigrate(&datamodel.Company{}, &datamodel.Department{}, &datamodel.User{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = postgres.NewRepository(db)

		company := datamodel.Company{Name: "Acme Corp"}
		gomega.Expect(db.Create(&company).Error).To(gomega.Succeed())
		companyID = company.ID

		it := datamodel.Department{Name: "IT", CompanyID: companyID}
		gomega.Expect(db.Create(&it).Error).To(gomega.Succeed())
		itDeptID = it.ID

		admin := datamodel.User{Email: "admin@acme.test", Role: auth.RoleSuperAdmin, CompanyID: &companyID}
		gomega.Expect(db.Create(&admin).Error).To(gomega.Succeed())
		adminID = admin.ID

		bob := datamodel.User{Email: "bob@acme.test", Role: auth.RoleEmployee, CompanyID: &companyID, DepartmentID: &itDeptID}
		gomega.Expect(db.Create(&bob).Error).To(gomega.Succeed())
		bobID = bob.ID
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("should exclude non-employee accounts and resolve names", func() {
			employees, err := repo.List(companyID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(employees).To(gomega.HaveLen(1))
			gomega.Expect(employees[0].Email).To(gomega.Equal("bob@acme.test"))
			gomega.Expect(employees[0].CompanyName).To(gomega.Equal("Acme Corp"))
			gomega.Expect(employees[0].DepartmentName).To(gomega.Equal("IT"))
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("should read an admin account as not found", func() {
			_, err := repo.GetByID(adminID)
			gomega.Expect(err).To(gomega.Equal(internal.ErrEmployeeNotFound))
		})

		ginkgo.It("should fetch an employee", func() {
			emp, err := repo.GetByID(bobID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(emp.Email).To(gomega.Equal("bob@acme.test"))
		})
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should reject a duplicate email", func() {
			emp := &employee.Employee{Email: "bob@acme.test", CompanyID: &companyID, DepartmentID: &itDeptID}
			err := repo.Create(emp, "hash")
			gomega.Expect(err).To(gomega.Equal(internal.ErrDuplicateEmail))
		})

		ginkgo.It("should persist a new employee", func() {
			first := "Carol"
			emp := &employee.Employee{Email: "carol@acme.test", FirstName: &first, CompanyID: &companyID, DepartmentID: &itDeptID}
			gomega.Expect(repo.Create(emp, "hash")).To(gomega.Succeed())
			gomega.Expect(emp.ID).ToNot(gomega.BeZero())
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("should patch only the given fields", func() {
			first := "Robert"
			updated, err := repo.Update(bobID, map[string]interface{}{"first_name": first})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.FirstName).ToNot(gomega.BeNil())
			gomega.Expect(*updated.FirstName).To(gomega.Equal("Robert"))
			gomega.Expect(*updated.DepartmentID).To(gomega.Equal(itDeptID))
		})

		ginkgo.It("should not update an admin through this repository", func() {
			_, err := repo.Update(adminID, map[string]interface{}{"first_name": "X"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrEmployeeNotFound))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should delete an employee once", func() {
			gomega.Expect(repo.Delete(bobID)).To(gomega.Succeed())
			gomega.Expect(repo.Delete(bobID)).To(gomega.Equal(internal.ErrEmployeeNotFound))
		})

		ginkgo.It("should never delete an admin", func() {
			gomega.Expect(repo.Delete(adminID)).To(gomega.Equal(internal.ErrEmployeeNotFound))
		})
	})
})
