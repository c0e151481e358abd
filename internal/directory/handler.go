package directory

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/transport"
	"github.com/compliancehq/compliance-management/pkg/logger"
)

type ServiceAPI interface {
	RegisterCompany(dto RegisterCompanyDTO) (*Company, error)
	CreateDepartment(principal *internal.Principal, dto CreateDepartmentDTO) (*Department, error)
	ListDepartments(principal *internal.Principal) ([]Department, error)
	CreateInvitation(ctx context.Context, principal *internal.Principal, dto InviteDTO) (*InvitationResponse, error)
	AcceptInvitation(dto AcceptInvitationDTO) (*OnboardResponse, error)
	OnboardFirstTime(dto OnboardDTO) (*OnboardResponse, error)
	CompleteOnboarding(principal *internal.Principal, dto CompleteOnboardingDTO) (*OnboardingResult, error)
	WizardCreateCompany(principal *internal.Principal, dto RegisterCompanyDTO) (*Company, error)
	WizardCreateDepartments(principal *internal.Principal, dto WizardDepartmentsDTO) ([]Department, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) RegisterCompany(w http.ResponseWriter, r *http.Request) {
	var dto RegisterCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := h.Service.RegisterCompany(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, company)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	department, err := h.Service.CreateDepartment(principal, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, department)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	departments, err := h.Service.ListDepartments(principal)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, departments)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var dto InviteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.CreateInvitation(r.Context(), principal, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var dto AcceptInvitationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.AcceptInvitation(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	var dto OnboardDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.OnboardFirstTime(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var dto CompleteOnboardingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.CompleteOnboarding(principal, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) WizardCompany(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var dto RegisterCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := h.Service.WizardCreateCompany(principal, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, company)
}

func (h *Handler) WizardDepartments(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	var dto WizardDepartmentsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	departments, err := h.Service.WizardCreateDepartments(principal, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, departments)
}

// WizardComplete tells the frontend where to go once setup is done.
func (h *Handler) WizardComplete(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message":  "Onboarding complete.",
		"redirect": "/dashboard",
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	h.Logger.Error("directory request failed", "error", err)

	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.WriteAppError(w, err)
}
