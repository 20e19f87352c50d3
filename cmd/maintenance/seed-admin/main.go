package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/config"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// Creates the schema and the first Administrator account. The password is read
// from SEED_ADMIN_PASSWORD so it never shows up in shell history.
func main() {
	var name, email, phone string
	flag.StringVar(&name, "name", "Administrator", "Display name of the administrator")
	flag.StringVar(&email, "email", "", "Login email of the administrator")
	flag.StringVar(&phone, "phone", "", "Contact phone number")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || phone == "" || password == "" {
		logger.Fatal("-email, -phone and SEED_ADMIN_PASSWORD are required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatalf("Failed to apply schema: %v", err)
	}

	deps := services.Deps{
		Clock:  services.SystemClock(cfg.Schedule.Location),
		Logger: logger,
	}
	staffService := services.NewStaffService(deps,
		database.NewStaffRepository(db, cfg.Database.QueryTimeout),
		database.NewSessionRepository(db, cfg.Database.QueryTimeout),
		cfg.Security.BcryptCost)

	// The bootstrap identity only exists for this process
	bootstrap := access.Identity{SubjectID: uuid.Nil, Role: access.RoleAdministrator, Email: "seed@localhost"}

	payload := map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
		"phone":    phone,
		"role":     string(access.RoleAdministrator),
	}

	user, err := staffService.Create(ctx, bootstrap, payload)
	if err != nil {
		logger.Fatalf("Failed to create administrator: %v", err)
	}

	fmt.Printf("Administrator %s created with id %s\n", user.Email, user.ID)
}
