package postgres

import (
	"github.com/compliancehq/compliance-management/internal/core/datamodel"
	"github.com/compliancehq/compliance-management/internal/notification"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(message string, userID *int64) error {
	row := datamodel.Notification{Message: message, UserID: userID}
	return r.db.Create(&row).Error
}

func (r *Repository) List() ([]notification.Notification, error) {
	var rows []datamodel.Notification
	if err := r.db.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	notifications := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, notification.Notification{
			ID:        row.ID,
			UserID:    row.UserID,
			Message:   row.Message,
			CreatedAt: row.CreatedAt,
		})
	}
	return notifications, nil
}
