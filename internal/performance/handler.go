package performance

import (
	"log/slog"
	"net/http"

	"github.com/compliancehq/compliance-management/internal"
	"github.com/compliancehq/compliance-management/internal/analytics"
	"github.com/compliancehq/compliance-management/internal/transport"
	"github.com/compliancehq/compliance-management/pkg/logger"
)

type ServiceAPI interface {
	AllRecords() ([]Record, error)
	ComplianceRecords(compliant bool) ([]Record, error)
	Personal(principal *internal.Principal) (*PersonalPerformance, error)
}

// AnalyticsAPI is the cached aggregate surface served alongside the raw
// records.
type AnalyticsAPI interface {
	PerformanceScores() ([]analytics.PerformanceScore, error)
	CompliancePercentages() ([]analytics.CompliancePercentage, error)
	CompliancePercentage() (*analytics.ComplianceOverview, error)
	DashboardStatistics() (*analytics.DashboardStats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	Analytics AnalyticsAPI
}

func NewHandler(svc ServiceAPI, analyticsSvc AnalyticsAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Analytics:   analyticsSvc,
	}
}

func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.AllRecords()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) Compliant(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ComplianceRecords(true)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) NonCompliant(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ComplianceRecords(false)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, records)
}

// Personal serves the caller's own performance view.
func (h *Handler) Personal(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	personal, err := h.Service.Personal(principal)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, personal)
}

func (h *Handler) Scores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.Analytics.PerformanceScores()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, scores)
}

func (h *Handler) CompliancePercentages(w http.ResponseWriter, r *http.Request) {
	percentages, err := h.Analytics.CompliancePercentages()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, percentages)
}

// ComplianceOverview serves the single company-wide compliance figure; the
// per-department breakdown lives on CompliancePercentages.
func (h *Handler) ComplianceOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Analytics.CompliancePercentage()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Analytics.DashboardStatistics()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	h.Logger.Error("performance request failed", "error", err)
	h.WriteAppError(w, err)
}
