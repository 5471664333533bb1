package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// ProfileBuilder provides a fluent interface for creating test profiles
type ProfileBuilder struct {
	email     string
	firstName string
	lastName  string
	role      rbac.Role
	testDB    *TestDatabase
	t         *testing.T
}

// NewProfile creates a new profile builder
func (tdb *TestDatabase) NewProfile(t *testing.T) *ProfileBuilder {
	return &ProfileBuilder{
		email:     "test@example.com",
		firstName: "Test",
		lastName:  "User",
		role:      rbac.RoleClient,
		testDB:    tdb,
		t:         t,
	}
}

// WithEmail sets the profile's email
func (pb *ProfileBuilder) WithEmail(email string) *ProfileBuilder {
	pb.email = email
	return pb
}

// WithName sets the profile's first and last name
func (pb *ProfileBuilder) WithName(first, last string) *ProfileBuilder {
	pb.firstName = first
	pb.lastName = last
	return pb
}

// AsAdmin gives the profile the admin role
func (pb *ProfileBuilder) AsAdmin() *ProfileBuilder {
	pb.role = rbac.RoleAdmin
	return pb
}

// AsTechnician gives the profile the technician role
func (pb *ProfileBuilder) AsTechnician() *ProfileBuilder {
	pb.role = rbac.RoleTechnician
	return pb
}

// AsClient gives the profile the client role
func (pb *ProfileBuilder) AsClient() *ProfileBuilder {
	pb.role = rbac.RoleClient
	return pb
}

// Create creates the profile in the database
func (pb *ProfileBuilder) Create() *store.Profile {
	ctx := context.Background()

	profile, err := pb.testDB.Store().CreateProfile(ctx, store.CreateProfileParams{
		Email:        pb.email,
		PasswordHash: "$2a$10$test.hash.not.a.real.password.hash",
		FirstName:    pb.firstName,
		LastName:     pb.lastName,
		Role:         string(pb.role),
	})
	require.NoError(pb.t, err, "Failed to create profile")

	return profile
}

// ClientBuilder provides a fluent interface for creating test clients
type ClientBuilder struct {
	name        string
	company     *string
	departments []string
	testDB      *TestDatabase
	t           *testing.T
}

// NewClient creates a new client builder
func (tdb *TestDatabase) NewClient(t *testing.T) *ClientBuilder {
	return &ClientBuilder{
		name:   "Acme Corp",
		testDB: tdb,
		t:      t,
	}
}

// WithName sets the client name
func (cb *ClientBuilder) WithName(name string) *ClientBuilder {
	cb.name = name
	return cb
}

// WithCompany sets the registered company name
func (cb *ClientBuilder) WithCompany(company string) *ClientBuilder {
	cb.company = &company
	return cb
}

// WithDepartments also creates the named departments under the client
func (cb *ClientBuilder) WithDepartments(names ...string) *ClientBuilder {
	cb.departments = append(cb.departments, names...)
	return cb
}

// Create creates the client (and any departments) in the database
func (cb *ClientBuilder) Create() *store.Client {
	ctx := context.Background()

	client, err := cb.testDB.Store().CreateClient(ctx, store.ClientParams{
		Name:    cb.name,
		Company: cb.company,
	})
	require.NoError(cb.t, err, "Failed to create client")

	for _, dept := range cb.departments {
		_, err := cb.testDB.Store().CreateDepartment(ctx, client.ID, dept)
		require.NoError(cb.t, err, "Failed to create department")
	}

	return client
}

// PrinterBuilder provides a fluent interface for creating test printers
type PrinterBuilder struct {
	make_     string
	series    string
	model     string
	status    string
	ownedBy   string
	clientID  *uuid.UUID
	assigned  *string
	isForRent bool
	notes     *string
	testDB    *TestDatabase
	t         *testing.T
}

// NewPrinter creates a new printer builder
func (tdb *TestDatabase) NewPrinter(t *testing.T) *PrinterBuilder {
	return &PrinterBuilder{
		make_:   "Kyocera",
		series:  "ECOSYS",
		model:   "P3145dn",
		status:  "available",
		ownedBy: "system",
		testDB:  tdb,
		t:       t,
	}
}

// WithModel sets the make, series and model
func (pb *PrinterBuilder) WithModel(make_, series, model string) *PrinterBuilder {
	pb.make_ = make_
	pb.series = series
	pb.model = model
	return pb
}

// WithStatus sets the printer status
func (pb *PrinterBuilder) WithStatus(status string) *PrinterBuilder {
	pb.status = status
	return pb
}

// OwnedByClient marks the printer as client-owned and assigned
func (pb *PrinterBuilder) OwnedByClient(client *store.Client) *PrinterBuilder {
	pb.ownedBy = "client"
	pb.clientID = &client.ID
	pb.assigned = &client.Name
	return pb
}

// ForRent marks the printer as offered on the storefront
func (pb *PrinterBuilder) ForRent() *PrinterBuilder {
	pb.isForRent = true
	return pb
}

// WithNotes sets the printer notes
func (pb *PrinterBuilder) WithNotes(notes string) *PrinterBuilder {
	pb.notes = &notes
	return pb
}

// Create creates the printer in the database
func (pb *PrinterBuilder) Create() *store.Printer {
	ctx := context.Background()

	printer, err := pb.testDB.Store().CreatePrinter(ctx, store.CreatePrinterParams{
		Make:       pb.make_,
		Series:     pb.series,
		Model:      pb.model,
		Status:     pb.status,
		OwnedBy:    pb.ownedBy,
		AssignedTo: pb.assigned,
		ClientID:   pb.clientID,
		IsForRent:  pb.isForRent,
		Notes:      pb.notes,
	})
	require.NoError(pb.t, err, "Failed to create printer")

	return printer
}

// MaintenanceBuilder provides a fluent interface for creating maintenance records
type MaintenanceBuilder struct {
	printerID    uuid.UUID
	description  string
	status       string
	activityType string
	technician   *string
	testDB       *TestDatabase
	t            *testing.T
}

// NewMaintenanceRecord creates a new maintenance record builder
func (tdb *TestDatabase) NewMaintenanceRecord(t *testing.T, printer *store.Printer) *MaintenanceBuilder {
	return &MaintenanceBuilder{
		printerID:    printer.ID,
		description:  "Prints blank pages",
		status:       "pending",
		activityType: "report",
		testDB:       tdb,
		t:            t,
	}
}

// WithStatus sets the record status
func (mb *MaintenanceBuilder) WithStatus(status string) *MaintenanceBuilder {
	mb.status = status
	return mb
}

// WithDescription sets the issue description
func (mb *MaintenanceBuilder) WithDescription(desc string) *MaintenanceBuilder {
	mb.description = desc
	return mb
}

// WithTechnician sets the assigned technician
func (mb *MaintenanceBuilder) WithTechnician(name string) *MaintenanceBuilder {
	mb.technician = &name
	return mb
}

// Create creates the maintenance record in the database
func (mb *MaintenanceBuilder) Create() *store.MaintenanceRecord {
	ctx := context.Background()

	record, err := mb.testDB.Store().CreateMaintenanceRecord(ctx, store.CreateMaintenanceRecordParams{
		PrinterID:        mb.printerID,
		IssueDescription: mb.description,
		Status:           mb.status,
		ActivityType:     mb.activityType,
		Technician:       mb.technician,
		ReportedAt:       time.Now(),
	})
	require.NoError(mb.t, err, "Failed to create maintenance record")

	return record
}

// TonerBuilder provides a fluent interface for creating toner models with stock
type TonerBuilder struct {
	make_        string
	model        string
	color        string
	series       []string
	quantity     int32
	reorderLevel int32
	testDB       *TestDatabase
	t            *testing.T
}

// NewTonerModel creates a new toner model builder
func (tdb *TestDatabase) NewTonerModel(t *testing.T) *TonerBuilder {
	return &TonerBuilder{
		make_:        "Kyocera",
		model:        "TK-3160",
		color:        "black",
		series:       []string{"ECOSYS"},
		quantity:     10,
		reorderLevel: 2,
		testDB:       tdb,
		t:            t,
	}
}

// WithModel sets the make and model
func (tb *TonerBuilder) WithModel(make_, model string) *TonerBuilder {
	tb.make_ = make_
	tb.model = model
	return tb
}

// WithStock sets the stock quantity and reorder level
func (tb *TonerBuilder) WithStock(quantity, reorderLevel int32) *TonerBuilder {
	tb.quantity = quantity
	tb.reorderLevel = reorderLevel
	return tb
}

// Create creates the toner model with its stock row
func (tb *TonerBuilder) Create() *store.TonerModel {
	ctx := context.Background()

	toner, err := tb.testDB.Store().CreateTonerModel(ctx, store.TonerModelParams{
		Make:             tb.make_,
		Model:            tb.model,
		Color:            tb.color,
		CompatibleSeries: tb.series,
	})
	require.NoError(tb.t, err, "Failed to create toner model")

	_, err = tb.testDB.Store().UpsertTonerStock(ctx, toner.ID, tb.quantity, tb.reorderLevel)
	require.NoError(tb.t, err, "Failed to create toner stock")

	return toner
}
