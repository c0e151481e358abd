package content

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/transport"
	"github.com/compliancehq/compliance-management/internal/upload"
	"github.com/compliancehq/compliance-management/pkg/logger"
	"github.com/go-chi/chi"
)

const multipartMemoryLimit = 8 << 20

type ServiceAPI interface {
	CreatePolicy(ctx context.Context, dto CreatePolicyDTO, file *FileMeta) (*Policy, error)
	ListPolicies() ([]Policy, error)
	GetPolicy(policyID int64) (*Policy, error)
	DepartmentPolicies(principal *internal.Principal) ([]Policy, error)
	DeletePolicy(policyID int64) error

	CreateTraining(dto CreateTrainingDTO, file *FileMeta) (*TrainingContent, error)
	ListTraining() ([]TrainingContent, error)
	TrainingForPolicy(principal *internal.Principal, policyID int64) ([]TrainingContent, error)
	DeleteTraining(trainingID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Uploads *upload.Store
}

func NewHandler(svc ServiceAPI, uploads *upload.Store) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Uploads:     uploads,
	}
}

// CreatePolicy accepts JSON or multipart/form-data; the multipart form may
// carry a policy document under the "document" field.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var dto CreatePolicyDTO
	var fileMeta *FileMeta

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		dto.Title = r.FormValue("title")
		dto.Content = r.FormValue("content")
		dto.DepartmentID, _ = strconv.ParseInt(r.FormValue("departmentId"), 10, 64)

		file, header, err := r.FormFile("document")
		switch {
		case err == nil:
			defer file.Close()
			fileMeta, err = h.storeFile(file, header, h.Uploads.SavePolicyDocument)
			if err != nil {
				h.writeServiceError(w, err)
				return
			}
		case errors.Is(err, http.ErrMissingFile):
		default:
			h.WriteError(w, http.StatusBadRequest, "invalid document upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	policy, err := h.Service.CreatePolicy(r.Context(), dto, fileMeta)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, policy)
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Service.ListPolicies()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policyID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	policy, err := h.Service.GetPolicy(policyID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, policy)
}

// DepartmentPolicies serves the caller's own department.
func (h *Handler) DepartmentPolicies(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	policies, err := h.Service.DepartmentPolicies(principal)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, policies)
}

func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	policyID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	if err := h.Service.DeletePolicy(policyID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateTraining(w http.ResponseWriter, r *http.Request) {
	var dto CreateTrainingDTO
	var fileMeta *FileMeta

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		dto.Title = r.FormValue("title")
		dto.Content = r.FormValue("content")
		dto.PolicyID, _ = strconv.ParseInt(r.FormValue("policyId"), 10, 64)

		file, header, err := r.FormFile("document")
		switch {
		case err == nil:
			defer file.Close()
			fileMeta, err = h.storeFile(file, header, h.Uploads.SaveTrainingMaterial)
			if err != nil {
				h.writeServiceError(w, err)
				return
			}
		case errors.Is(err, http.ErrMissingFile):
		default:
			h.WriteError(w, http.StatusBadRequest, "invalid document upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	training, err := h.Service.CreateTraining(dto, fileMeta)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, training)
}

func (h *Handler) ListTraining(w http.ResponseWriter, r *http.Request) {
	training, err := h.Service.ListTraining()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, training)
}

func (h *Handler) TrainingForPolicy(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	policyID, err := strconv.ParseInt(chi.URLParam(r, "policyId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	training, err := h.Service.TrainingForPolicy(principal, policyID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, training)
}

func (h *Handler) DeleteTraining(w http.ResponseWriter, r *http.Request) {
	trainingID, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid training id")
		return
	}

	if err := h.Service.DeleteTraining(trainingID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) storeFile(
	file multipart.File,
	header *multipart.FileHeader,
	save func(multipart.File, *multipart.FileHeader) (*upload.StoredFile, error),
) (*FileMeta, error) {
	stored, err := save(file, header)
	if err != nil {
		return nil, err
	}
	return &FileMeta{
		Path:     stored.Path,
		Name:     stored.OriginalName,
		Size:     stored.Size,
		MimeType: stored.MimeType,
	}, nil
}

func (h *Handler) pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	h.Logger.Error("content request failed", "error", err)

	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.WriteAppError(w, err)
}
