package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/database"
	"github.com/printdesk/pd-backend/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type SeedData struct {
	Users       []User       `yaml:"users"`
	Clients     []Client     `yaml:"clients"`
	Printers    []Printer    `yaml:"printers"`
	TonerModels []TonerModel `yaml:"toner_models"`
	Settings    []Setting    `yaml:"settings"`
}

type User struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
}

type Client struct {
	Name        string   `yaml:"name"`
	Company     *string  `yaml:"company,omitempty"`
	Departments []string `yaml:"departments,omitempty"`
}

type Printer struct {
	Make         string  `yaml:"make"`
	Series       string  `yaml:"series"`
	Model        string  `yaml:"model"`
	SerialNumber *string `yaml:"serial_number,omitempty"`
	Status       string  `yaml:"status"`
	ClientName   *string `yaml:"client_name,omitempty"`
	Department   *string `yaml:"department,omitempty"`
	Location     *string `yaml:"location,omitempty"`
	IsForRent    bool    `yaml:"is_for_rent"`
}

type TonerModel struct {
	Make             string   `yaml:"make"`
	Model            string   `yaml:"model"`
	Color            string   `yaml:"color"`
	CompatibleSeries []string `yaml:"compatible_series"`
	Quantity         int32    `yaml:"quantity"`
	ReorderLevel     int32    `yaml:"reorder_level"`
}

type Setting struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		return seedCommand(args)
	case "nuke":
		return nukeCommand(args)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "Path to a single YAML file")
	dir := fs.String("dir", "", "Path to directory containing YAML files")
	dryRun := fs.Bool("dry-run", false, "Validate files without making database changes")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	files, err := resolveFiles(*file, *dir)
	if err != nil {
		return err
	}

	seedData, err := loadSeedData(files)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	if *dryRun {
		fmt.Println("dry run: validating data structure")
		return validateSeedData(seedData)
	}

	cfg := config.Load()
	seedDB, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("seedDB connection failed: %w", err)
	}
	defer seedDB.Close()

	fmt.Printf("seeding seedDB from %d file(s)\n", len(files))
	return applySeedData(context.Background(), seedDB.Store(), seedData)
}

func nukeCommand(args []string) error {
	fs := flag.NewFlagSet("nuke", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if !*force && !confirmNuke() {
		fmt.Println("operation cancelled")
		return nil
	}

	return nukeDatabase()
}

func resolveFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, errors.New("must specify either --file or --dir")
	}

	if file != "" && dir != "" {
		return nil, errors.New("cannot specify both --file and --dir")
	}

	if file != "" {
		return []string{file}, nil
	}

	return findYAMLFiles(dir)
}

func findYAMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && isYAMLFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in directory: %s", dir)
	}

	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadSeedData(files []string) (*SeedData, error) {
	combined := &SeedData{}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		var fileData SeedData
		if err := yaml.Unmarshal(data, &fileData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %s: %w", file, err)
		}

		// Combine data from all files
		combined.Users = append(combined.Users, fileData.Users...)
		combined.Clients = append(combined.Clients, fileData.Clients...)
		combined.Printers = append(combined.Printers, fileData.Printers...)
		combined.TonerModels = append(combined.TonerModels, fileData.TonerModels...)
		combined.Settings = append(combined.Settings, fileData.Settings...)
	}

	return combined, nil
}

func validateSeedData(data *SeedData) error {
	fmt.Printf("  Users: %d\n", len(data.Users))
	fmt.Printf("  Clients: %d\n", len(data.Clients))
	fmt.Printf("  Printers: %d\n", len(data.Printers))
	fmt.Printf("  Toner Models: %d\n", len(data.TonerModels))
	fmt.Printf("  Settings: %d\n", len(data.Settings))
	fmt.Println("data structure is valid")
	return nil
}

func applySeedData(ctx context.Context, st *store.Store, data *SeedData) error {
	// Create users first so everything else has someone to act as
	for _, user := range data.Users {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", user.Email, err)
		}

		if _, err := st.CreateProfile(ctx, store.CreateProfileParams{
			Email:        user.Email,
			PasswordHash: string(hashedPassword),
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			Role:         user.Role,
		}); err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, err)
		}
		fmt.Printf("created user: %s\n", user.Email)
	}

	// Create clients and their departments
	clientIDs := make(map[string]store.Client)
	for _, client := range data.Clients {
		created, err := st.CreateClient(ctx, store.ClientParams{
			Name:    client.Name,
			Company: client.Company,
		})
		if err != nil {
			return fmt.Errorf("failed to create client %s: %w", client.Name, err)
		}
		clientIDs[client.Name] = *created
		fmt.Printf("created client: %s\n", client.Name)

		for _, dept := range client.Departments {
			if _, err := st.CreateDepartment(ctx, created.ID, dept); err != nil {
				return fmt.Errorf("failed to create department %s for %s: %w", dept, client.Name, err)
			}
			fmt.Printf("created department: %s / %s\n", client.Name, dept)
		}
	}

	// Create printers, resolving client names to IDs
	for _, printer := range data.Printers {
		params := store.CreatePrinterParams{
			Make:         printer.Make,
			Series:       printer.Series,
			Model:        printer.Model,
			SerialNumber: printer.SerialNumber,
			Status:       printer.Status,
			OwnedBy:      "system",
			Department:   printer.Department,
			Location:     printer.Location,
			IsForRent:    printer.IsForRent,
		}
		if printer.ClientName != nil {
			client, exists := clientIDs[*printer.ClientName]
			if !exists {
				return fmt.Errorf("client %s not found for printer %s", *printer.ClientName, printer.Model)
			}
			params.OwnedBy = "client"
			params.ClientID = &client.ID
			params.AssignedTo = &client.Name
		}
		if _, err := st.CreatePrinter(ctx, params); err != nil {
			return fmt.Errorf("failed to create printer %s %s: %w", printer.Make, printer.Model, err)
		}
		fmt.Printf("created printer: %s %s\n", printer.Make, printer.Model)
	}

	// Toner models with their stock rows
	for _, toner := range data.TonerModels {
		created, err := st.CreateTonerModel(ctx, store.TonerModelParams{
			Make:             toner.Make,
			Model:            toner.Model,
			Color:            toner.Color,
			CompatibleSeries: toner.CompatibleSeries,
		})
		if err != nil {
			return fmt.Errorf("failed to create toner model %s: %w", toner.Model, err)
		}
		if _, err := st.UpsertTonerStock(ctx, created.ID, toner.Quantity, toner.ReorderLevel); err != nil {
			return fmt.Errorf("failed to set stock for toner %s: %w", toner.Model, err)
		}
		fmt.Printf("created toner model: %s %s (%s)\n", toner.Make, toner.Model, toner.Color)
	}

	for _, setting := range data.Settings {
		if _, err := st.UpsertSetting(ctx, setting.Key, setting.Value); err != nil {
			return fmt.Errorf("failed to set setting %s: %w", setting.Key, err)
		}
		fmt.Printf("set setting: %s\n", setting.Key)
	}

	fmt.Println("seeding completed")
	return nil
}

func nukeDatabase() error {
	cfg := config.Load()

	// Open database connection for goose
	sqlDB, err := goose.OpenDBWithDriver("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			fmt.Printf("warning: failed to close database: %v\n", err)
		}
	}()

	fmt.Println("resetting database with goose...")

	// Reset database (down all migrations)
	fmt.Println("rolling back all migrations...")
	if err := goose.Reset(sqlDB, "db/migrations"); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}

	// Apply all migrations (back up to current state)
	fmt.Println("applying all migrations...")
	if err := goose.Up(sqlDB, "db/migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	fmt.Println("database reset complete - ready for seeding")
	return nil
}

func confirmNuke() bool {
	fmt.Print("warning: this will delete all data from the database. are you sure? (yes/no): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	return strings.ToLower(strings.TrimSpace(response)) == "yes"
}

func printUsage() {
	fmt.Println("Seeder Tool - Database seeding utility for PrintDesk")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  seeder <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  seed        Seed database from YAML files")
	fmt.Println("  nuke        Delete all data from database")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("SEED FLAGS:")
	fmt.Println("  --file      Path to a single YAML file")
	fmt.Println("  --dir       Path to directory containing YAML files")
	fmt.Println("  --dry-run   Validate files without making database changes")
	fmt.Println()
	fmt.Println("NUKE FLAGS:")
	fmt.Println("  --force     Skip confirmation prompt")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  seeder seed --file dev-data.yaml")
	fmt.Println("  seeder seed --dir ./seed-data/")
	fmt.Println("  seeder seed --dir ./seed-data/ --dry-run")
	fmt.Println("  seeder nuke")
	fmt.Println("  seeder nuke --force")
}
