package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/core/events"
)

type Service struct {
	repo       Repository
	recipients RecipientSource
	eventBus   *events.EventBus
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, recipients RecipientSource, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		recipients: recipients,
		eventBus:   eventBus,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to move assessments
// between Scheduled and Open without sleeping.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) List() ([]Assessment, error) {
	return s.repo.List()
}

func (s *Service) Get(assessmentID int64) (*Assessment, error) {
	return s.repo.GetByID(assessmentID)
}

func (s *Service) Create(dto CreateAssessmentDTO) (*Assessment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a := &Assessment{Title: dto.Title, PolicyID: dto.PolicyID}
	if err := s.repo.Create(a); err != nil {
		return nil, err
	}

	s.logger.Info("assessment created", "assessment_id", a.ID, "policy_id", a.PolicyID)
	return a, nil
}

func (s *Service) AddQuestion(assessmentID int64, dto AddQuestionDTO) (*Question, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(assessmentID); err != nil {
		return nil, err
	}

	question := &Question{Text: dto.Text, AssessmentID: assessmentID}
	if err := s.repo.AddQuestion(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *Service) Questions(assessmentID int64) ([]Question, error) {
	if _, err := s.repo.GetByID(assessmentID); err != nil {
		return nil, err
	}
	return s.repo.Questions(assessmentID)
}

// Schedule sets when the assessment opens and notifies the employees of the
// policy's department. Notification failures never fail the scheduling.
func (s *Service) Schedule(ctx context.Context, assessmentID int64, dto ScheduleDTO) (*Assessment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(assessmentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetSchedule(assessmentID, dto.ScheduledAt); err != nil {
		return nil, err
	}
	a.ScheduledAt = &dto.ScheduledAt

	recipients, err := s.recipients.EmployeeEmailsByDepartment(a.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve schedule recipients",
			"assessment_id", assessmentID, "error", err)
	} else if len(recipients) > 0 {
		s.eventBus.Publish(ctx, events.NewAssessmentScheduledEvent(
			a.ID, a.Title, dto.ScheduledAt, recipients))
	}

	s.logger.Info("assessment scheduled",
		"assessment_id", assessmentID,
		"scheduled_at", dto.ScheduledAt)
	return a, nil
}

func (s *Service) Delete(assessmentID int64) error {
	if err := s.repo.Delete(assessmentID); err != nil {
		return err
	}
	s.logger.Info("assessment deleted", "assessment_id", assessmentID)
	return nil
}

// Available lists the assessments the caller can take right now: their
// department's, already open, not yet submitted.
func (s *Service) Available(principal *internal.Principal) ([]AvailableAssessment, error) {
	if principal.DepartmentID == nil {
		return nil, internal.ErrDepartmentNotSet
	}

	now := s.now()
	rows, err := s.repo.AvailableForUser(principal.UserID, *principal.DepartmentID, now)
	if err != nil {
		return nil, fmt.Errorf("list available assessments: %w", err)
	}

	available := make([]AvailableAssessment, 0, len(rows))
	for _, a := range rows {
		available = append(available, AvailableAssessment{
			Assessment: a,
			State:      DeriveState(a.ScheduledAt, now, false),
		})
	}
	return available, nil
}

// Submit grades and records the caller's submission. Availability is
// re-checked inside the repository transaction, so a stale listing or a
// concurrent double-submit both fail the same way.
func (s *Service) Submit(principal *internal.Principal, assessmentID int64, dto SubmitDTO) (*SubmitResponse, error) {
	if principal.DepartmentID == nil {
		return nil, internal.ErrDepartmentNotSet
	}

	result, err := s.repo.Submit(principal.UserID, *principal.DepartmentID, assessmentID, len(dto.Answers), s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("assessment submitted",
		"assessment_id", assessmentID,
		"user_id", principal.UserID,
		"score", result.Score)

	return &SubmitResponse{Result: result, State: StateCompleted}, nil
}
