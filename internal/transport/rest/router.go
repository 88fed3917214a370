package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/permission-management/internal/attachment"
	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/permissiontype"
	"github.com/frahmantamala/permission-management/internal/report"
	"github.com/frahmantamala/permission-management/internal/request"
	"github.com/frahmantamala/permission-management/internal/sector"
	"github.com/frahmantamala/permission-management/internal/transport/middleware"
	"github.com/frahmantamala/permission-management/internal/transport/swagger"
	"github.com/frahmantamala/permission-management/internal/user"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Sector     *sector.Handler
	Type       *permissiontype.Handler
	Request    *request.Handler
	Attachment *attachment.Handler
	Report     *report.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/register", h.Auth.Register)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
			sr.Post("/forgot-password", h.Auth.ForgotPassword)
			sr.Get("/reset-token", h.Auth.ValidateResetToken)
			sr.Post("/reset-password", h.Auth.ResetPassword)
		})

		// Everything below requires a resolved actor.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.GetProfile)

			// User administration is HR-only.
			pr.Route("/users", func(ur chi.Router) {
				ur.Group(func(hr chi.Router) {
					hr.Use(h.Auth.RequireRole(user.RoleHR))
					hr.Get("/", h.User.List)
					hr.Post("/", h.User.Create)
					hr.Post("/bulk-import", h.User.BulkImport)
					hr.Get("/{id}", h.User.Get)
					hr.Put("/{id}", h.User.Update)
					hr.Delete("/{id}", h.User.Delete)
				})
			})

			pr.Route("/sectors", func(sr chi.Router) {
				sr.Get("/", h.Sector.List)
				sr.Get("/{id}", h.Sector.Get)
				// Members are visible to HR and the sector's own manager;
				// the service enforces the scoping.
				sr.Get("/{id}/users", h.User.BySector)

				sr.Group(func(hr chi.Router) {
					hr.Use(h.Auth.RequireRole(user.RoleHR))
					hr.Post("/", h.Sector.Create)
					hr.Post("/bulk-upload", h.Sector.BulkUpload)
					hr.Put("/{id}", h.Sector.Update)
					hr.Delete("/{id}", h.Sector.Delete)
				})
			})

			pr.Route("/permission-types", func(tr chi.Router) {
				tr.Get("/", h.Type.List)
				tr.Get("/{id}", h.Type.Get)

				tr.Group(func(hr chi.Router) {
					hr.Use(h.Auth.RequireRole(user.RoleHR))
					hr.Post("/", h.Type.Create)
					hr.Post("/bulk-upload", h.Type.BulkUpload)
					hr.Put("/{id}", h.Type.Update)
					hr.Delete("/{id}", h.Type.Delete)
				})
			})

			pr.Route("/requests", func(rr chi.Router) {
				rr.Post("/", h.Request.Create)
				rr.Get("/", h.Request.List)
				rr.Get("/mine", h.Request.ListMine)
				rr.Get("/pending", h.Request.ListPending)
				rr.Get("/{id}", h.Request.Get)
				rr.Put("/{id}", h.Request.Update)
				rr.Patch("/{id}/approve", h.Request.Approve)
				rr.Patch("/{id}/reject", h.Request.Reject)

				rr.Post("/{id}/attachments", h.Attachment.Add)
				rr.Get("/{id}/attachments", h.Attachment.List)
			})

			pr.Route("/attachments", func(ar chi.Router) {
				ar.Post("/upload-url", h.Attachment.IssueUploadURL)
				ar.Get("/{id}/download", h.Attachment.Download)
				ar.Delete("/{id}", h.Attachment.Delete)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/summary", h.Report.Summary)
				rr.Get("/export/pdf", h.Report.ExportPDF)
				rr.Get("/export/excel", h.Report.ExportExcel)
			})
		})
	})
}
