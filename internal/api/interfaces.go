package api

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printdesk/pd-backend/internal/auth"
	"github.com/printdesk/pd-backend/internal/fleet"
	"github.com/printdesk/pd-backend/internal/media"
	"github.com/printdesk/pd-backend/internal/notifications"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
)

// DatabaseService defines the interface for database access
type DatabaseService interface {
	Store() *store.Store
	Pool() *pgxpool.Pool
}

// AuthService defines the interface for credential and session operations
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	SignUp(ctx context.Context, arg auth.SignUpParams) (*store.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
	SignOut(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error
}

// AuthorizerService defines the interface for permission decisions
type AuthorizerService interface {
	HasRole(user *auth.AuthenticatedUser, role rbac.Role) bool
	HasPermission(user *auth.AuthenticatedUser, perm rbac.Permission) bool
}

// FleetService defines the interface for printer lifecycle operations
type FleetService interface {
	Assign(ctx context.Context, printerID uuid.UUID, arg fleet.AssignParams) (*store.Printer, error)
	Transfer(ctx context.Context, printerID uuid.UUID, arg fleet.AssignParams) (*store.Printer, error)
	Reclaim(ctx context.Context, printerID uuid.UUID) (*store.Printer, error)
	UpdateStatus(ctx context.Context, printerID uuid.UUID, newStatus fleet.Status) (*store.Printer, error)
	MarkRepaired(ctx context.Context, printerID uuid.UUID, arg fleet.MarkRepairedParams) (*store.Printer, *store.MaintenanceRecord, error)
	ServiceReport(ctx context.Context, printerID uuid.UUID, arg fleet.ServiceReportParams) (*store.MaintenanceRecord, error)
	QuickUpdate(ctx context.Context, printerID uuid.UUID, arg fleet.QuickUpdateParams) (*store.Printer, *store.MaintenanceRecord, error)
	OpenMaintenance(ctx context.Context, printerID uuid.UUID, issue string, technician *string) (*store.MaintenanceRecord, error)
	CreateMaintenance(ctx context.Context, arg fleet.CreateMaintenanceParams) (*store.MaintenanceRecord, error)
	AdvanceMaintenance(ctx context.Context, recordID uuid.UUID, to fleet.MaintenanceStatus) (*store.MaintenanceRecord, error)
}

// NotifierService defines the interface for fan-out notifications
type NotifierService interface {
	Notify(ctx context.Context, actorID uuid.UUID, entityType string, entityID uuid.UUID, groups []notifications.NotifierGroup) error
}

// MediaService defines the interface for printer photo storage
type MediaService interface {
	UploadPrinterPhoto(ctx context.Context, printerID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*media.Photo, error)
	ListPrinterPhotos(ctx context.Context, printerID uuid.UUID) ([]media.Photo, error)
	DeletePrinterPhoto(ctx context.Context, printerID uuid.UUID, key string) error
}

// SettingsBus defines the interface for settings change broadcasts
type SettingsBus interface {
	Broadcast(ctx context.Context) error
}

// QueueService defines the interface for background task submission
type QueueService interface {
	Enqueue(taskType string, data interface{}) (*asynq.TaskInfo, error)
}
