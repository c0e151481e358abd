package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/core/events"
)

// SessionIssuer is the slice of the auth service the directory needs to hand
// out sessions at the end of onboarding and invitation acceptance.
type SessionIssuer interface {
	HashPassword(password string) (string, error)
	IssueTokens(account *auth.Account) (auth.AuthTokens, error)
}

// InvitationSigner mints and checks the tokens embedded in invitation links.
type InvitationSigner interface {
	GenerateInvitationToken(invitationID int64, email string) (string, error)
	ValidateInvitationToken(tokenString string) (*auth.InvitationClaims, error)
}

type Service struct {
	repo     Repository
	sessions SessionIssuer
	signer   InvitationSigner
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, sessions SessionIssuer, signer InvitationSigner, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		signer:   signer,
		eventBus: eventBus,
		logger:   logger,
	}
}

// RegisterCompany creates the tenant company. The deployment hosts exactly one
// company, so a second registration is rejected outright.
func (s *Service) RegisterCompany(dto RegisterCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FirstCompany()
	if err != nil {
		return nil, fmt.Errorf("check existing company: %w", err)
	}
	if existing != nil {
		return nil, internal.ErrCompanyExists
	}

	company := &Company{Name: dto.Name}
	if err := s.repo.CreateCompany(company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	s.logger.Info("company registered", "company_id", company.ID, "name", company.Name)
	return company, nil
}

func (s *Service) CreateDepartment(principal *internal.Principal, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if principal.CompanyID == nil {
		return nil, ValidationError{Msg: "account has no company"}
	}

	department := &Department{Name: dto.Name, CompanyID: *principal.CompanyID}
	if err := s.repo.CreateDepartment(department); err != nil {
		return nil, fmt.Errorf("create department: %w", err)
	}
	return department, nil
}

func (s *Service) ListDepartments(principal *internal.Principal) ([]Department, error) {
	if principal.CompanyID == nil {
		return []Department{}, nil
	}
	return s.repo.ListDepartments(*principal.CompanyID)
}

// CreateInvitation records a pending invitation, signs its token and hands the
// email delivery to the notification handler via the event bus. Mail delivery
// failing never fails the invitation.
func (s *Service) CreateInvitation(ctx context.Context, principal *internal.Principal, dto InviteDTO) (*InvitationResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if principal.CompanyID == nil {
		return nil, ValidationError{Msg: "account has no company"}
	}

	pending, err := s.repo.HasPendingInvitation(dto.Email)
	if err != nil {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}
	if pending {
		return nil, internal.ErrDuplicateInvitation
	}

	department, err := s.repo.GetDepartment(dto.DepartmentID)
	if err != nil {
		return nil, err
	}
	if department.CompanyID != *principal.CompanyID {
		return nil, ValidationError{Msg: "department does not belong to your company"}
	}

	invitation := &Invitation{
		Email:        dto.Email,
		Status:       InvitationPending,
		CompanyID:    *principal.CompanyID,
		DepartmentID: dto.DepartmentID,
		InvitedByID:  principal.UserID,
	}
	if err := s.repo.CreateInvitation(invitation); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	token, err := s.signer.GenerateInvitationToken(invitation.ID, invitation.Email)
	if err != nil {
		return nil, fmt.Errorf("sign invitation token: %w", err)
	}

	stored, err := s.repo.GetInvitation(invitation.ID)
	if err == nil {
		invitation = stored
	}

	s.eventBus.Publish(ctx, events.NewInvitationCreatedEvent(
		invitation.ID, invitation.Email, token, invitation.CompanyName, invitation.DepartmentName))

	s.logger.Info("invitation created",
		"invitation_id", invitation.ID,
		"email", invitation.Email,
		"department_id", invitation.DepartmentID)

	return &InvitationResponse{Invitation: invitation, Token: token}, nil
}

// AcceptInvitation redeems an invitation token: the account is created with
// the invitation's company and department and the invitation flips to
// Accepted. A reused or tampered token fails with the same invalid-invitation
// error as an expired one.
func (s *Service) AcceptInvitation(dto AcceptInvitationDTO) (*OnboardResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.signer.ValidateInvitationToken(dto.Token)
	if err != nil {
		return nil, err
	}

	invitation, err := s.repo.GetInvitation(claims.InvitationID)
	if err != nil {
		return nil, internal.ErrInvalidInvitation
	}
	if invitation.Status != InvitationPending || invitation.Email != claims.Email {
		return nil, internal.ErrInvalidInvitation
	}

	hash, err := s.sessions.HashPassword(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.repo.RedeemInvitation(invitation, hash)
	if err != nil {
		return nil, err
	}

	account := &auth.Account{
		ID:           userID,
		Email:        invitation.Email,
		Role:         auth.RoleEmployee,
		CompanyID:    &invitation.CompanyID,
		DepartmentID: &invitation.DepartmentID,
	}
	tokens, err := s.sessions.IssueTokens(account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("invitation accepted", "invitation_id", invitation.ID, "user_id", userID)

	return &OnboardResponse{
		AuthTokens: tokens,
		User:       auth.SessionUser{ID: userID, Email: account.Email, Role: account.Role},
	}, nil
}

// OnboardFirstTime signs up the very first user of a fresh deployment. The
// account starts as Pending and is promoted to SuperAdmin once onboarding
// creates the company.
func (s *Service) OnboardFirstTime(dto OnboardDTO) (*OnboardResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FirstCompany()
	if err != nil {
		return nil, fmt.Errorf("check existing company: %w", err)
	}
	if existing != nil {
		return nil, internal.ErrCompanyExists
	}

	hash, err := s.sessions.HashPassword(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.repo.CreateUser(dto.Email, hash, auth.RolePending)
	if err != nil {
		return nil, err
	}

	account := &auth.Account{ID: userID, Email: dto.Email, Role: auth.RolePending}
	tokens, err := s.sessions.IssueTokens(account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("first-time onboarding started", "user_id", userID)

	return &OnboardResponse{
		AuthTokens: tokens,
		User:       auth.SessionUser{ID: userID, Email: dto.Email, Role: auth.RolePending},
		Redirect:   "onboarding-wizard",
	}, nil
}

// CompleteOnboarding turns a Pending account into the SuperAdmin of a newly
// created company, with its initial departments, in one transaction.
func (s *Service) CompleteOnboarding(principal *internal.Principal, dto CompleteOnboardingDTO) (*OnboardingResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if principal.Role != auth.RolePending {
		return nil, internal.ErrForbidden
	}

	existing, err := s.repo.FirstCompany()
	if err != nil {
		return nil, fmt.Errorf("check existing company: %w", err)
	}
	if existing != nil {
		return nil, internal.ErrCompanyExists
	}

	company := &Company{Name: dto.CompanyName}
	departments, err := s.repo.OnboardCompany(principal.UserID, company, dto.Departments)
	if err != nil {
		return nil, fmt.Errorf("complete onboarding: %w", err)
	}

	s.logger.Info("onboarding completed",
		"user_id", principal.UserID,
		"company_id", company.ID,
		"departments", len(departments))

	return &OnboardingResult{Company: company, Departments: departments}, nil
}

// WizardCreateCompany is the first step of the step-wise setup wizard: create
// the company and attach the current user as its SuperAdmin.
func (s *Service) WizardCreateCompany(principal *internal.Principal, dto RegisterCompanyDTO) (*Company, error) {
	company, err := s.RegisterCompany(dto)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AttachCompany(principal.UserID, company.ID, auth.RoleSuperAdmin); err != nil {
		return nil, fmt.Errorf("attach company: %w", err)
	}
	return company, nil
}

// WizardCreateDepartments adds departments to the wizard user's company.
func (s *Service) WizardCreateDepartments(principal *internal.Principal, dto WizardDepartmentsDTO) ([]Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if principal.CompanyID == nil {
		return nil, ValidationError{Msg: "create a company first"}
	}

	departments := make([]Department, 0, len(dto.Departments))
	for _, name := range dto.Departments {
		department := &Department{Name: name, CompanyID: *principal.CompanyID}
		if err := s.repo.CreateDepartment(department); err != nil {
			return nil, fmt.Errorf("create department %q: %w", name, err)
		}
		departments = append(departments, *department)
	}
	return departments, nil
}
