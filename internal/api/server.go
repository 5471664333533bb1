package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/rbac"
)

type Server struct {
	db       DatabaseService
	fleet    FleetService
	auth     AuthService
	authz    AuthorizerService
	notifier NotifierService
	media    MediaService
	queue    QueueService
	settings SettingsBus
}

func NewServer(db DatabaseService, fleetSvc FleetService, authSvc AuthService, authz AuthorizerService, notifier NotifierService, media MediaService, queue QueueService, settings SettingsBus) *Server {
	return &Server{
		db:       db,
		fleet:    fleetSvc,
		auth:     authSvc,
		authz:    authz,
		notifier: notifier,
		media:    media,
		queue:    queue,
		settings: settings,
	}
}

// RegisterRoutes mounts every handler. The caller wires the
// authentication middleware around the protected group; this router only
// assumes the session is in context by the time a gated handler runs.
func (s *Server) RegisterRoutes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Get("/health", s.HealthCheck)
	r.Get("/ready", s.ReadinessCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", s.SignIn)
			r.Post("/signup", s.SignUp)
			r.Post("/refresh", s.Refresh)
			r.Post("/signout", s.SignOut)
			r.Post("/password-reset/request", s.RequestPasswordReset)
			r.Post("/password-reset/confirm", s.ConfirmPasswordReset)
		})

		// Public storefront: rentable printers, no session required.
		r.Get("/storefront/printers", s.ListStorefrontPrinters)

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Route("/printers", func(r chi.Router) {
				r.With(s.require(rbac.ReadPrinters)).Get("/", s.ListPrinters)
				r.With(s.require(rbac.CreatePrinters)).Post("/", s.CreatePrinter)
				r.With(s.require(rbac.ReadPrinters)).Get("/{id}", s.GetPrinter)
				r.With(s.require(rbac.UpdatePrinters)).Put("/{id}", s.UpdatePrinter)
				r.With(s.require(rbac.DeletePrinters)).Delete("/{id}", s.DeletePrinter)

				r.With(s.require(rbac.AssignPrinters)).Post("/{id}/assign", s.AssignPrinter)
				r.With(s.require(rbac.TransferPrinters)).Post("/{id}/transfer", s.TransferPrinter)
				r.With(s.require(rbac.AssignPrinters)).Post("/{id}/reclaim", s.ReclaimPrinter)
				r.With(s.require(rbac.UpdatePrinters)).Post("/{id}/status", s.UpdatePrinterStatus)

				r.With(s.require(rbac.UpdateMaintenance)).Post("/{id}/mark-repaired", s.MarkPrinterRepaired)
				r.With(s.require(rbac.CreateMaintenance)).Post("/{id}/service-report", s.FileServiceReport)
				r.With(s.require(rbac.CreateMaintenance)).Post("/{id}/quick-update", s.QuickUpdatePrinter)
				r.With(s.require(rbac.CreateMaintenance)).Post("/{id}/maintenance", s.OpenPrinterMaintenance)
				r.With(s.require(rbac.ReadMaintenance)).Get("/{id}/maintenance", s.ListPrinterMaintenance)

				r.With(s.require(rbac.UpdatePrinters)).Post("/{id}/photos", s.UploadPrinterPhoto)
				r.With(s.require(rbac.ReadPrinters)).Get("/{id}/photos", s.ListPrinterPhotos)
				r.With(s.require(rbac.UpdatePrinters)).Delete("/{id}/photos/{key}", s.DeletePrinterPhoto)
			})

			r.Route("/maintenance", func(r chi.Router) {
				r.With(s.require(rbac.ReadMaintenance)).Get("/", s.ListMaintenanceRecords)
				r.With(s.require(rbac.CreateMaintenance)).Post("/", s.CreateMaintenanceRecord)
				r.With(s.require(rbac.ReadMaintenance)).Get("/{id}", s.GetMaintenanceRecord)
				r.With(s.require(rbac.UpdateMaintenance)).Put("/{id}", s.UpdateMaintenanceRecord)
				r.With(s.require(rbac.UpdateMaintenance)).Post("/{id}/status", s.AdvanceMaintenanceRecord)
				r.With(s.require(rbac.DeleteMaintenance)).Delete("/{id}", s.DeleteMaintenanceRecord)
			})

			r.Route("/clients", func(r chi.Router) {
				r.With(s.require(rbac.ReadClients)).Get("/", s.ListClients)
				r.With(s.require(rbac.CreateClients)).Post("/", s.CreateClient)
				r.With(s.require(rbac.ReadClients)).Get("/{id}", s.GetClient)
				r.With(s.require(rbac.UpdateClients)).Put("/{id}", s.UpdateClient)
				r.With(s.require(rbac.DeleteClients)).Delete("/{id}", s.DeleteClient)

				r.With(s.require(rbac.ReadClients)).Get("/{id}/departments", s.ListDepartments)
				r.With(s.require(rbac.UpdateClients)).Post("/{id}/departments", s.CreateDepartment)
				r.With(s.require(rbac.UpdateClients)).Put("/{id}/departments/{deptID}", s.UpdateDepartment)
				r.With(s.require(rbac.UpdateClients)).Delete("/{id}/departments/{deptID}", s.DeleteDepartment)

				r.With(s.require(rbac.ReadPrinters)).Get("/{id}/printers", s.ListClientPrinters)
			})

			r.Route("/rentals", func(r chi.Router) {
				r.With(s.require(rbac.ReadRentals)).Get("/", s.ListRentals)
				r.With(s.require(rbac.CreateRentals)).Post("/", s.CreateRental)
				r.With(s.require(rbac.ReadRentals)).Get("/{id}", s.GetRental)
				r.With(s.require(rbac.UpdateRentals)).Put("/{id}", s.UpdateRental)
				r.With(s.require(rbac.UpdateRentals)).Post("/{id}/activate", s.ActivateRental)
				r.With(s.require(rbac.UpdateRentals)).Post("/{id}/return", s.ReturnRental)
				r.With(s.require(rbac.UpdateRentals)).Post("/{id}/cancel", s.CancelRental)
				r.With(s.require(rbac.DeleteRentals)).Delete("/{id}", s.DeleteRental)
			})

			r.Route("/toners", func(r chi.Router) {
				r.With(s.require(rbac.ReadToners)).Get("/", s.ListTonerModels)
				r.With(s.require(rbac.CreateToners)).Post("/", s.CreateTonerModel)
				r.With(s.require(rbac.ReadToners)).Get("/low-stock", s.ListLowTonerStock)
				r.With(s.require(rbac.ReadToners)).Get("/{id}", s.GetTonerModel)
				r.With(s.require(rbac.UpdateToners)).Put("/{id}", s.UpdateTonerModel)
				r.With(s.require(rbac.DeleteToners)).Delete("/{id}", s.DeleteTonerModel)
				r.With(s.require(rbac.ReadToners)).Get("/{id}/stock", s.GetTonerStock)
				r.With(s.require(rbac.UpdateToners)).Put("/{id}/stock", s.SetTonerStock)
				r.With(s.require(rbac.UpdateToners)).Post("/{id}/adjust", s.AdjustTonerStock)
			})

			r.Route("/wiki", func(r chi.Router) {
				r.With(s.require(rbac.ReadWiki)).Get("/", s.ListWikiArticles)
				r.With(s.require(rbac.CreateWiki)).Post("/", s.CreateWikiArticle)
				r.With(s.require(rbac.ReadWiki)).Get("/{slug}", s.GetWikiArticle)
				r.Put("/{id}", s.UpdateWikiArticle) // own-or-any check in handler
				r.With(s.require(rbac.CreateWiki)).Post("/{id}/submit", s.SubmitWikiArticle)
				r.With(s.require(rbac.ApproveWiki)).Post("/{id}/approve", s.ApproveWikiArticle)
				r.With(s.require(rbac.ApproveWiki)).Post("/{id}/reject", s.RejectWikiArticle)
				r.With(s.require(rbac.DeleteWiki)).Delete("/{id}", s.DeleteWikiArticle)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", s.GetCurrentUser)
				r.With(s.require(rbac.ReadUsers)).Get("/", s.ListUsers)
				r.With(s.require(rbac.ReadUsers)).Get("/{id}", s.GetUser)
				r.With(s.require(rbac.UpdateUsers)).Put("/{id}", s.UpdateUser)
				r.With(s.require(rbac.DeleteUsers)).Delete("/{id}", s.DeleteUser)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.ListNotifications)
				r.Post("/{id}/read", s.MarkNotificationRead)
				r.Post("/read-all", s.MarkAllNotificationsRead)
			})

			r.Route("/settings", func(r chi.Router) {
				r.With(s.require(rbac.ReadSettings)).Get("/", s.ListSettings)
				r.With(s.require(rbac.UpdateSettings)).Put("/{key}", s.UpdateSetting)
			})
		})
	})
}

// require gates a route on a single permission. The session must already
// be in context; a missing session is a 401, a failed check a 403.
func (s *Server) require(perm rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.GetAuthenticatedUser(r.Context())
			if !ok {
				Unauthorized("Authentication required").Write(w, http.StatusUnauthorized)
				return
			}
			if !s.authz.HasPermission(user, perm) {
				PermissionDenied("Insufficient permissions").Write(w, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
