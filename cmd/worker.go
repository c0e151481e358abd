package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/compliancehq/compliance-management/internal/notification"
	notificationstore "github.com/compliancehq/compliance-management/internal/notification/postgres"
	"github.com/compliancehq/compliance-management/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	workerCmd = &cobra.Command{
		Use:   "worker",
		Short: "Run the assessment reminder worker",
		Long:  `Periodically reminds employees about assessments opening within the next day.`,
		Run: func(cmd *cobra.Command, args []string) {
			runWorker()
		},
	}
	workerInterval time.Duration
)

func init() {
	workerCmd.Flags().DurationVar(&workerInterval, "interval", 6*time.Hour, "time between reminder sweeps")
}

func runWorker() {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.Environment)
	lg := logger.LoggerWrapper()

	db, _, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	var mailer notification.Mailer
	if cfg.Mailer.Enabled {
		mailer = notification.NewSMTPMailer(
			cfg.Mailer.Host,
			cfg.Mailer.Port,
			cfg.Mailer.Username,
			cfg.Mailer.Password,
			cfg.Mailer.FromAddress,
		)
	} else {
		mailer = notification.NewLogMailer(lg)
	}
	pool := notification.NewPool(mailer, cfg.Mailer.MaxWorkers, cfg.Mailer.JobQueueSize, lg)
	pool.Start()

	notificationRepo := notificationstore.NewRepository(db)

	lg.Info("reminder worker started", "interval", workerInterval)

	ticker := time.NewTicker(workerInterval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sweep(db, pool, notificationRepo, lg)
	for {
		select {
		case <-ticker.C:
			sweep(db, pool, notificationRepo, lg)
		case sig := <-sigChan:
			lg.Info("worker shutting down", "signal", sig)
			pool.Stop()
			return
		}
	}
}

// sweep finds assessments opening within the next 24 hours and reminds every
// department employee who has not completed them yet.
func sweep(db *gorm.DB, pool *notification.Pool, repo *notificationstore.Repository, lg *slog.Logger) {
	now := time.Now()
	horizon := now.Add(24 * time.Hour)

	var assessments []datamodel.Assessment
	err := db.Preload("Policy").
		Where("scheduled_at IS NOT NULL AND scheduled_at > ? AND scheduled_at <= ?", now, horizon).
		Find(&assessments).Error
	if err != nil {
		lg.Error("reminder sweep failed to load assessments", "error", err)
		return
	}

	for _, a := range assessments {
		if a.Policy == nil {
			continue
		}

		var emails []string
		err := db.Model(&datamodel.User{}).
			Where("department_id = ? AND role = ?", a.Policy.DepartmentID, auth.RoleEmployee).
			Where("id NOT IN (SELECT user_id FROM results WHERE assessment_id = ?)", a.ID).
			Pluck("email", &emails).Error
		if err != nil {
			lg.Error("reminder sweep failed to load recipients", "assessment_id", a.ID, "error", err)
			continue
		}
		if len(emails) == 0 {
			continue
		}

		body := fmt.Sprintf(
			"Hello,\n\nReminder: the compliance assessment %q opens at %s.\n\nPlease log in and complete it.\n",
			a.Title, a.ScheduledAt.Format("2006-01-02 15:04 MST"))

		pool.Enqueue(notification.Email{
			To:      emails,
			Subject: "Upcoming assessment: " + a.Title,
			Body:    body,
		})

		message := fmt.Sprintf("Reminder sent for assessment %q to %d employees", a.Title, len(emails))
		if err := repo.Record(message, nil); err != nil {
			lg.Error("failed to record reminder notification", "error", err)
		}

		lg.Info("reminder enqueued", "assessment_id", a.ID, "recipients", len(emails))
	}
}
