package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/events"
)

type Service struct {
	repo       Repository
	recipients RecipientSource
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewService(repo Repository, recipients RecipientSource, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		recipients: recipients,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// CreatePolicy stores the policy and announces it to the department's
// employees. The announcement is fire-and-forget: a mail outage never rolls
// back a policy.
func (s *Service) CreatePolicy(ctx context.Context, dto CreatePolicyDTO, file *FileMeta) (*Policy, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	policy := &Policy{
		Title:        dto.Title,
		Content:      dto.Content,
		DepartmentID: dto.DepartmentID,
		File:         file,
	}
	if err := s.repo.CreatePolicy(policy); err != nil {
		return nil, fmt.Errorf("create policy: %w", err)
	}

	recipients, err := s.recipients.EmployeeEmailsByDepartment(policy.DepartmentID)
	if err != nil {
		s.logger.Error("failed to resolve policy recipients",
			"policy_id", policy.ID, "error", err)
	} else if len(recipients) > 0 {
		s.eventBus.Publish(ctx, events.NewPolicyPublishedEvent(
			policy.ID, policy.Title, policy.DepartmentName, recipients))
	}

	s.logger.Info("policy created", "policy_id", policy.ID, "department_id", policy.DepartmentID)
	return policy, nil
}

func (s *Service) ListPolicies() ([]Policy, error) {
	return s.repo.ListPolicies()
}

func (s *Service) GetPolicy(policyID int64) (*Policy, error) {
	return s.repo.GetPolicy(policyID)
}

// DepartmentPolicies returns the policies of the caller's own department.
func (s *Service) DepartmentPolicies(principal *internal.Principal) ([]Policy, error) {
	if principal.DepartmentID == nil {
		return nil, internal.ErrDepartmentNotSet
	}
	return s.repo.PoliciesByDepartment(*principal.DepartmentID)
}

func (s *Service) DeletePolicy(policyID int64) error {
	if err := s.repo.DeletePolicy(policyID); err != nil {
		return err
	}
	s.logger.Info("policy deleted", "policy_id", policyID)
	return nil
}

func (s *Service) CreateTraining(dto CreateTrainingDTO, file *FileMeta) (*TrainingContent, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetPolicy(dto.PolicyID); err != nil {
		return nil, err
	}

	training := &TrainingContent{
		Title:    dto.Title,
		Content:  dto.Content,
		PolicyID: dto.PolicyID,
		File:     file,
	}
	if err := s.repo.CreateTraining(training); err != nil {
		return nil, fmt.Errorf("create training content: %w", err)
	}

	s.logger.Info("training content created", "training_id", training.ID, "policy_id", training.PolicyID)
	return training, nil
}

func (s *Service) ListTraining() ([]TrainingContent, error) {
	return s.repo.ListTraining()
}

// TrainingForPolicy returns a policy's training material. Employees may only
// read material for policies of their own department; admins see everything.
func (s *Service) TrainingForPolicy(principal *internal.Principal, policyID int64) ([]TrainingContent, error) {
	policy, err := s.repo.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}

	if principal.Role == auth.RoleEmployee {
		if principal.DepartmentID == nil || policy.DepartmentID != *principal.DepartmentID {
			return nil, internal.ErrAccessDenied
		}
	}

	return s.repo.TrainingByPolicy(policyID)
}

func (s *Service) DeleteTraining(trainingID int64) error {
	if err := s.repo.DeleteTraining(trainingID); err != nil {
		return err
	}
	s.logger.Info("training content deleted", "training_id", trainingID)
	return nil
}
