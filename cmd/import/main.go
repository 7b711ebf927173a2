package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/quillmed/chartextract/internal/audit"
	"github.com/quillmed/chartextract/internal/config"
	"github.com/quillmed/chartextract/internal/database"
	"github.com/quillmed/chartextract/internal/encryption"
	"github.com/quillmed/chartextract/internal/importer"
	"github.com/quillmed/chartextract/internal/search"
	"github.com/quillmed/chartextract/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	dir := flag.String("dir", "", "Directory of documents to import")
	flag.Parse()
	if *dir == "" {
		log.Fatal("The -dir flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Disconnect(db)

	mongoClient, err := database.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elasticsearch.URL},
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", zap.Error(err))
	}

	encryptService, err := encryption.NewService()
	if err != nil {
		logger.Fatal("Failed to initialize encryption service", zap.Error(err))
	}

	auditService := audit.NewService(esClient)
	storeService := store.NewService(db, encryptService, auditService)
	archiveService := store.NewArchiveService(mongoClient, cfg.Mongo.Database)
	searchService := search.NewService(esClient)

	imp := importer.New(
		storeService,
		archiveService,
		searchService,
		auditService,
		logger,
		cfg.Import.Delay,
	)

	res, err := imp.Run(ctx, *dir)
	if err != nil {
		logger.Error("Import run aborted", zap.Error(err))
	}

	logger.Info("Import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))

	if err != nil || res.Failed > 0 {
		os.Exit(1)
	}
}
