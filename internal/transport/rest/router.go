package rest

import (
	"log/slog"
	"net/http"

	"github.com/compliancehq/compliance-management/internal/assessment"
	"github.com/compliancehq/compliance-management/internal/auth"
	"github.com/compliancehq/compliance-management/internal/content"
	"github.com/compliancehq/compliance-management/internal/directory"
	"github.com/compliancehq/compliance-management/internal/employee"
	"github.com/compliancehq/compliance-management/internal/performance"
	"github.com/compliancehq/compliance-management/internal/transport/middleware"
	"github.com/compliancehq/compliance-management/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *auth.Handler
	Directory   *directory.Handler
	Employee    *employee.Handler
	Content     *content.Handler
	Assessment  *assessment.Handler
	Performance *performance.Handler
	Health      *HealthHandler
}

// NewRouter wires middleware and all routes. Role gates rely on the role the
// auth middleware just loaded from storage, not on token claims.
func NewRouter(h Handlers, openAPIPath string, lg *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware(lg))
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.LoggingMiddleware(lg))

	r.Get("/ping", h.Health.pingHandler)
	r.Get("/health", h.Health.healthCheckHandler)
	r.Mount("/swagger", swagger.Handler())
	r.Get("/openapi.yml", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, openAPIPath)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public: login, token refresh and the two entry points into the
		// system (first-time onboarding and invitation acceptance).
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)
		r.Post("/auth/logout", h.Auth.Logout)
		r.Post("/auth/onboard", h.Directory.Onboard)
		r.Post("/auth/accept-invitation", h.Directory.AcceptInvitation)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.AuthMiddleware)

			// Onboarding: only accounts still Pending may create the company.
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.RequireRoles(auth.RolePending))
				r.Post("/onboarding/company", h.Directory.CompleteOnboarding)
			})

			// Setup wizard spans the Pending->SuperAdmin promotion.
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.RequireRoles(auth.RolePending, auth.RoleSuperAdmin))
				r.Post("/auth/wizard/company", h.Directory.WizardCompany)
				r.Post("/auth/wizard/departments", h.Directory.WizardDepartments)
				r.Post("/auth/wizard/complete", h.Directory.WizardComplete)
			})

			// Admin surface.
			r.Group(func(r chi.Router) {
				r.Use(h.Auth.RequireRoles(auth.RoleSuperAdmin))

				r.Post("/auth/register", h.Auth.Register)
				r.Post("/auth/register-company", h.Directory.RegisterCompany)
				r.Post("/auth/create-department", h.Directory.CreateDepartment)
				r.Post("/auth/invite", h.Directory.Invite)
				r.Get("/departments", h.Directory.ListDepartments)

				r.Get("/employees", h.Employee.List)
				r.Post("/employees", h.Employee.Create)
				r.Get("/employees/{id}", h.Employee.Get)
				r.Put("/employees/{id}", h.Employee.Update)
				r.Delete("/employees/{id}", h.Employee.Delete)

				r.Get("/policies", h.Content.ListPolicies)
				r.Post("/policies", h.Content.CreatePolicy)
				r.Delete("/policies/{id}", h.Content.DeletePolicy)

				r.Get("/training", h.Content.ListTraining)
				r.Post("/training", h.Content.CreateTraining)
				r.Delete("/training/{id}", h.Content.DeleteTraining)

				r.Get("/assessments", h.Assessment.List)
				r.Post("/assessments", h.Assessment.Create)
				r.Get("/assessments/{id}", h.Assessment.Get)
				r.Delete("/assessments/{id}", h.Assessment.Delete)
				r.Post("/assessments/{id}/questions", h.Assessment.AddQuestion)
				r.Post("/assessments/{id}/schedule", h.Assessment.Schedule)

				r.Get("/performance", h.Performance.All)
				r.Get("/performance/compliance", h.Performance.Compliant)
				r.Get("/performance/non-compliance", h.Performance.NonCompliant)
				r.Get("/performance/scores", h.Performance.Scores)
				r.Get("/performance/compliance-percentages", h.Performance.CompliancePercentages)
				r.Get("/performance/compliance-percentage", h.Performance.ComplianceOverview)

				r.Get("/admin/dashboard", h.Performance.Dashboard)
			})

			// Any authenticated user.
			r.Get("/policies/department", h.Content.DepartmentPolicies)
			r.Get("/policies/{id}", h.Content.GetPolicy)
			r.Get("/training/policy/{policyId}", h.Content.TrainingForPolicy)
			r.Get("/assessments/available", h.Assessment.Available)
			r.Get("/assessments/{id}/questions", h.Assessment.Questions)
			r.Post("/assessments/{id}/submit", h.Assessment.Submit)
			r.Get("/performance/me", h.Performance.Personal)
		})
	})

	return r
}
