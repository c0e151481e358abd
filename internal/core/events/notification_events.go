package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeInvitationCreated   = "invitation.created"
	EventTypeAssessmentScheduled = "assessment.scheduled"
	EventTypePolicyPublished     = "policy.published"
)

type InvitationCreatedEvent struct {
	BaseEvent
	InvitationID   int64  `json:"invitation_id"`
	Email          string `json:"email"`
	Token          string `json:"token"`
	CompanyName    string `json:"company_name"`
	DepartmentName string `json:"department_name"`
}

func NewInvitationCreatedEvent(invitationID int64, email, token, companyName, departmentName string) *InvitationCreatedEvent {
	return &InvitationCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInvitationCreated,
			Timestamp: time.Now(),
		},
		InvitationID:   invitationID,
		Email:          email,
		Token:          token,
		CompanyName:    companyName,
		DepartmentName: departmentName,
	}
}

// AssessmentScheduledEvent carries the recipient list so the notification
// handler does not need directory access of its own.
type AssessmentScheduledEvent struct {
	BaseEvent
	AssessmentID    int64     `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Recipients      []string  `json:"recipients"`
}

func NewAssessmentScheduledEvent(assessmentID int64, title string, scheduledAt time.Time, recipients []string) *AssessmentScheduledEvent {
	return &AssessmentScheduledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAssessmentScheduled,
			Timestamp: time.Now(),
		},
		AssessmentID:    assessmentID,
		AssessmentTitle: title,
		ScheduledAt:     scheduledAt,
		Recipients:      recipients,
	}
}

type PolicyPublishedEvent struct {
	BaseEvent
	PolicyID       int64    `json:"policy_id"`
	PolicyTitle    string   `json:"policy_title"`
	DepartmentName string   `json:"department_name"`
	Recipients     []string `json:"recipients"`
}

func NewPolicyPublishedEvent(policyID int64, title, departmentName string, recipients []string) *PolicyPublishedEvent {
	return &PolicyPublishedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePolicyPublished,
			Timestamp: time.Now(),
		},
		PolicyID:       policyID,
		PolicyTitle:    title,
		DepartmentName: departmentName,
		Recipients:     recipients,
	}
}
