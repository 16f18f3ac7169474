package app

import (
	"fmt"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sankat-mitra/api/api"
	"github.com/sankat-mitra/api/config"
	"github.com/sankat-mitra/api/database"
	"github.com/sankat-mitra/api/router"
	"github.com/sankat-mitra/api/services"
	"github.com/sankat-mitra/api/services/cron"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// The reply tables are static data; a drifted table is a deploy-time
	// defect, so refuse to boot on one.
	if err := services.ValidateSmallTalkTables(); err != nil {
		return fmt.Errorf("small talk tables: %w", err)
	}

	// Initialize storage backend
	var store database.Storage
	if getEnv.STORE_DRIVER == "memory" {
		store = database.NewMemoryStore()
	} else {
		gormStore, err := database.StartGORM()
		if err != nil {
			print("Check whether the Postgres is running or not\n")
			print("If not running, start it or set STORE_DRIVER=memory for local development\n")
			return err
		}

		if err := gormStore.Init(); err != nil {
			print("Failed to initialize database tables\n")
			print("Error running migrations:\n")
			return err
		}
		store = gormStore
	}

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	// Custom Logger
	app.Use(logger.New())

	app.Use(recover.New())

	// Setup Routes
	directory := router.SetupRoutes(app, store, getEnv)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(store, directory)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Get the PORT & Start the Server
	return server.Run()

}
