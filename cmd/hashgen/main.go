package main

import (
	"context"
	"fmt"
	"os"

	"github.com/printdesk/pd-backend/internal/config"
	"github.com/printdesk/pd-backend/internal/database"
	"github.com/printdesk/pd-backend/internal/rbac"
	"github.com/printdesk/pd-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 6 {
		fmt.Fprintf(os.Stderr, "Usage: %s <email> <password> <first-name> <last-name> <role>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s admin@printdesk.local mypassword Dana Reyes admin\n", os.Args[0])
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]
	firstName := os.Args[3]
	lastName := os.Args[4]
	role := os.Args[5]

	if _, ok := rbac.ParseRole(role); !ok {
		fmt.Fprintf(os.Stderr, "Invalid role %q\n", role)
		os.Exit(1)
	}

	// Generate bcrypt hash
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	cfg := config.Load()
	db, err := database.New(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Insert profile
	ctx := context.Background()
	profile, err := db.Store().CreateProfile(ctx, store.CreateProfileParams{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Profile created successfully: %s (%s)\n", profile.Email, profile.Role)
}
