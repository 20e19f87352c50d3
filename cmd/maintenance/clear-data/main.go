package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ironforge/gym-admin-backend/internal/config"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/joho/godotenv"
)

// gymTables lists every table holding gym data, children first
var gymTables = []string{
	"audit_logs",
	"login_attempts",
	"sessions",
	"physical_progress",
	"workout_sessions",
	"routine_assignments",
	"exercise_templates",
	"routine_templates",
	"attendance",
	"payments",
	"members",
	"staff_users",
}

func main() {
	var dbURLFlag string
	var keepStaff bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&keepStaff, "keep-staff", false, "Keep staff accounts so administrators can still log in")
	flag.Parse()

	// Optional .env so secrets need not be passed on the command line
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		ServiceKey:         os.Getenv("DATABASE_SERVICE_KEY"),
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	tables := gymTables
	if keepStaff {
		tables = tables[:len(tables)-1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("Connected to database. Truncating tables...")
	truncateSQL := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	if _, err := db.ExecContext(ctx, truncateSQL); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("All data cleared successfully (tables truncated, identities reset).")

	fmt.Println("Post-clear row counts:")
	for _, t := range gymTables {
		var count int
		if err := db.QueryRowxContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)).Scan(&count); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
