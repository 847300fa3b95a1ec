package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"maiveui/adapters/estimator"
	"maiveui/adapters/postgres"
	"maiveui/app"
	"maiveui/internal/config"
	"maiveui/internal/errors"
	"maiveui/internal/store"
	"maiveui/ports"
	"maiveui/ui"
)

// initSessionStore picks the durable Postgres store when DATABASE_URL is set
// and falls back to the in-memory cache otherwise.
func initSessionStore(appConfig *config.Config) (ports.SessionStore, func(), error) {
	if appConfig.Database.URL == "" {
		log.Println("No DATABASE_URL configured, keeping sessions in memory")
		return store.NewSessionCache(), func() {}, nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to prepare session schema")
	}
	log.Println("Using Postgres session store")
	return postgres.NewSessionRepository(db), func() { db.Close() }, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	sessions, closeStore, err := initSessionStore(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer closeStore()

	estimatorClient := estimator.NewClient(appConfig.Estimator.BaseURL, appConfig.Estimator.Timeout)

	analysisService := app.NewAnalysisService(sessions, estimatorClient)
	exportService := app.NewExportService(sessions)
	server := ui.NewServer(analysisService, exportService, estimatorClient)

	var g errgroup.Group
	g.Go(func() error {
		log.Printf("Starting MAIVE UI on http://localhost:%s", appConfig.Server.Port)
		return server.Start(":" + appConfig.Server.Port)
	})
	if appConfig.Ops.Enabled {
		ops := ui.NewOpsApp(estimatorClient)
		g.Go(func() error {
			log.Printf("Starting ops endpoints on http://localhost:%s", appConfig.Ops.Port)
			return ops.Start(":" + appConfig.Ops.Port)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
