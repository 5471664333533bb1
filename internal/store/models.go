package store

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a row in profiles, the source of identity and role.
type Profile struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Role         string    `db:"role"`
	Department   *string   `db:"department"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Client struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Company      *string   `db:"company"`
	ContactName  *string   `db:"contact_name"`
	ContactEmail *string   `db:"contact_email"`
	ContactPhone *string   `db:"contact_phone"`
	Address      *string   `db:"address"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Department struct {
	ID        uuid.UUID `db:"id"`
	ClientID  uuid.UUID `db:"client_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Printer status and owned_by are stored as enum strings; the fleet
// package owns the typed view and the legal transitions.
type Printer struct {
	ID           uuid.UUID  `db:"id"`
	Make         string     `db:"make"`
	Series       string     `db:"series"`
	Model        string     `db:"model"`
	SerialNumber *string    `db:"serial_number"`
	Status       string     `db:"status"`
	OwnedBy      string     `db:"owned_by"`
	AssignedTo   *string    `db:"assigned_to"`
	ClientID     *uuid.UUID `db:"client_id"`
	Department   *string    `db:"department"`
	Location     *string    `db:"location"`
	IsForRent    bool       `db:"is_for_rent"`
	Notes        *string    `db:"notes"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

type MaintenanceRecord struct {
	ID               uuid.UUID  `db:"id"`
	PrinterID        uuid.UUID  `db:"printer_id"`
	IssueDescription string     `db:"issue_description"`
	RepairNotes      *string    `db:"repair_notes"`
	Status           string     `db:"status"`
	ActivityType     string     `db:"activity_type"`
	Technician       *string    `db:"technician"`
	ReportedAt       time.Time  `db:"reported_at"`
	StartedAt        *time.Time `db:"started_at"`
	CompletedAt      *time.Time `db:"completed_at"`
	Remarks          *string    `db:"remarks"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

type Rental struct {
	ID          uuid.UUID  `db:"id"`
	PrinterID   uuid.UUID  `db:"printer_id"`
	ClientID    uuid.UUID  `db:"client_id"`
	Department  *string    `db:"department"`
	Status      string     `db:"status"`
	MonthlyRate float64    `db:"monthly_rate"`
	StartsOn    time.Time  `db:"starts_on"`
	EndsOn      *time.Time `db:"ends_on"`
	ReturnedAt  *time.Time `db:"returned_at"`
	Notes       *string    `db:"notes"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type TonerModel struct {
	ID               uuid.UUID `db:"id"`
	Make             string    `db:"make"`
	Model            string    `db:"model"`
	Color            string    `db:"color"`
	CompatibleSeries []string  `db:"compatible_series"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type TonerStock struct {
	ID           uuid.UUID `db:"id"`
	TonerModelID uuid.UUID `db:"toner_model_id"`
	Quantity     int32     `db:"quantity"`
	ReorderLevel int32     `db:"reorder_level"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type WikiArticle struct {
	ID         uuid.UUID  `db:"id"`
	Title      string     `db:"title"`
	Slug       string     `db:"slug"`
	Body       string     `db:"body"`
	Status     string     `db:"status"`
	AuthorID   uuid.UUID  `db:"author_id"`
	ApprovedBy *uuid.UUID `db:"approved_by"`
	Tags       []string   `db:"tags"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

type Notification struct {
	ID          uuid.UUID  `db:"id"`
	RecipientID uuid.UUID  `db:"recipient_id"`
	ActorID     uuid.UUID  `db:"actor_id"`
	EntityType  string     `db:"entity_type"`
	EntityID    uuid.UUID  `db:"entity_id"`
	Message     string     `db:"message"`
	ReadAt      *time.Time `db:"read_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
