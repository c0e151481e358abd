package assessment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/transport"
	"github.com/compliancehq/compliance-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List() ([]Assessment, error)
	Get(assessmentID int64) (*Assessment, error)
	Create(dto CreateAssessmentDTO) (*Assessment, error)
	AddQuestion(assessmentID int64, dto AddQuestionDTO) (*Question, error)
	Questions(assessmentID int64) ([]Question, error)
	Schedule(ctx context.Context, assessmentID int64, dto ScheduleDTO) (*Assessment, error)
	Delete(assessmentID int64) error
	Available(principal *internal.Principal) ([]AvailableAssessment, error)
	Submit(principal *internal.Principal, assessmentID int64, dto SubmitDTO) (*SubmitResponse, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.Service.List()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, assessments)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	a, err := h.Service.Get(assessmentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateAssessmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Create(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	var dto AddQuestionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.Service.AddQuestion(assessmentID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, question)
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	questions, err := h.Service.Questions(assessmentID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, questions)
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	var dto ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Schedule(r.Context(), assessmentID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	if err := h.Service.Delete(assessmentID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Available lists what the calling employee can take right now.
func (h *Handler) Available(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	available, err := h.Service.Available(principal)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, available)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	assessmentID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	var dto SubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Submit(principal, assessmentID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	h.Logger.Error("assessment request failed", "error", err)

	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.WriteAppError(w, err)
}
