package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, _, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			clearTables(db)
		}

		var companyCount int64
		db.Model(&datamodel.Company{}).Count(&companyCount)
		if companyCount > 0 {
			fmt.Println("database already seeded, nothing to do")
			return
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

		company := datamodel.Company{Name: "Acme Corp"}
		if err := db.Create(&company).Error; err != nil {
			log.Fatalf("failed to seed company: %v", err)
		}

		departments := []datamodel.Department{
			{Name: "Engineering", CompanyID: company.ID},
			{Name: "HR", CompanyID: company.ID},
			{Name: "IT", CompanyID: company.ID},
		}
		for i := range departments {
			if err := db.Create(&departments[i]).Error; err != nil {
				log.Fatalf("failed to seed department: %v", err)
			}
		}

		admin := datamodel.User{
			Email:        "admin@acme.test",
			PasswordHash: string(hash),
			Role:         auth.RoleSuperAdmin,
			CompanyID:    &company.ID,
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		fmt.Println("Seeded admin user:", admin.Email)

		employees := []datamodel.User{
			{Email: "alice@acme.test", Role: auth.RoleEmployee, CompanyID: &company.ID, DepartmentID: &departments[0].ID},
			{Email: "bob@acme.test", Role: auth.RoleEmployee, CompanyID: &company.ID, DepartmentID: &departments[2].ID},
		}
		for i := range employees {
			employees[i].PasswordHash = string(hash)
			if err := db.Create(&employees[i]).Error; err != nil {
				log.Fatalf("failed to seed employee: %v", err)
			}
			fmt.Println("Seeded employee:", employees[i].Email)
		}

		policy := datamodel.Policy{
			Title:        "Acceptable Use Policy",
			Content:      "All company systems must be used for business purposes only.",
			DepartmentID: departments[2].ID,
		}
		if err := db.Create(&policy).Error; err != nil {
			log.Fatalf("failed to seed policy: %v", err)
		}

		training := datamodel.TrainingContent{
			Title:    "Acceptable Use Basics",
			Content:  "Introductory training for the acceptable use policy.",
			PolicyID: policy.ID,
		}
		if err := db.Create(&training).Error; err != nil {
			log.Fatalf("failed to seed training: %v", err)
		}

		scheduledAt := time.Now().Add(-time.Hour)
		assessment := datamodel.Assessment{
			Title:       "Acceptable Use Assessment",
			PolicyID:    policy.ID,
			ScheduledAt: &scheduledAt,
		}
		if err := db.Create(&assessment).Error; err != nil {
			log.Fatalf("failed to seed assessment: %v", err)
		}
		questions := []string{
			"May company laptops be used for personal gaming?",
			"Who must approve installation of third-party software?",
		}
		for _, q := range questions {
			if err := db.Create(&datamodel.Question{Text: q, AssessmentID: assessment.ID}).Error; err != nil {
				log.Fatalf("failed to seed question: %v", err)
			}
		}

		perf := datamodel.PerformanceData{
			UserID:       employees[1].ID,
			DepartmentID: departments[2].ID,
			Metric:       "policy_review",
			Value:        92,
			Compliance:   true,
			Date:         time.Now(),
		}
		if err := db.Create(&perf).Error; err != nil {
			log.Fatalf("failed to seed performance data: %v", err)
		}

		fmt.Println("Seeding complete")
	},
}

func clearTables(db *gorm.DB) {
	// Children first so foreign keys stay satisfied.
	for _, model := range []interface{}{
		&datamodel.Result{},
		&datamodel.Question{},
		&datamodel.Assessment{},
		&datamodel.TrainingContent{},
		&datamodel.Policy{},
		&datamodel.PerformanceData{},
		&datamodel.Notification{},
		&datamodel.Invitation{},
		&datamodel.User{},
		&datamodel.Department{},
		&datamodel.Company{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			log.Fatalf("failed to clear table: %v", err)
		}
	}
	fmt.Println("Cleared existing data")
}
