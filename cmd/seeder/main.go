package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/bi_dashboard/internal/bootstrap"
	"github.com/locvowork/bi_dashboard/internal/config"
	"github.com/locvowork/bi_dashboard/internal/database"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	fixture := flag.String("fixture", "", "Fixture YAML to seed (defaults to FIXTURE_PATH)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt for clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("Dashboard Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app against Postgres
	fmt.Println("Initializing application...")
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorErr(ctx, err, "Failed to initialize application")
		log.Fatal(err)
	}
	defer app.Shutdown(ctx)

	db := app.DB
	if db == nil {
		log.Fatalf("DATA_SOURCE must be %q to seed, got %q", bootstrap.DataSourcePostgres, config.DefaultEnvConfig.DATA_SOURCE)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	var engagement domain.EngagementStore
	if app.DataStoreClient != nil {
		engagement = database.WrapDatastoreClient(app.DataStoreClient)
	}
	var index domain.EmployeeIndex
	if app.Index != nil {
		index = app.Index
	}
	seeder := database.NewDataSeeder(db, engagement, index)

	// Execute action
	switch *action {
	case "seed":
		path := *fixture
		if path == "" {
			path = config.DefaultEnvConfig.FIXTURE_PATH
		}
		performSeed(ctx, seeder, path)

	case "clear":
		performClear(ctx, seeder, *yes)

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		flag.PrintDefaults()
		return
	}

	fmt.Println("\nDone!")
}

func performSeed(ctx context.Context, seeder *database.DataSeeder, path string) {
	f, err := database.LoadFixture(path)
	if err != nil {
		log.Fatalf("Loading fixture failed: %v", err)
	}
	fmt.Printf("Seeding %s: %d financial rows, %d employees\n", path, len(f.Finance.Financial), len(f.HR.Employees))

	if err := seeder.Seed(ctx, f); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func performClear(ctx context.Context, seeder *database.DataSeeder, yes bool) {
	if !yes {
		fmt.Println("This will delete all seeded data!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}
	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("Clear failed: %v", err)
	}
}
