package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lumenlearn/mastery-engine/internal/concepts"
	"github.com/lumenlearn/mastery-engine/internal/config"
	"github.com/lumenlearn/mastery-engine/internal/data/repos"
	"github.com/lumenlearn/mastery-engine/internal/db"
	"github.com/lumenlearn/mastery-engine/internal/graph"
	httpx "github.com/lumenlearn/mastery-engine/internal/http"
	httpH "github.com/lumenlearn/mastery-engine/internal/http/handlers"
	"github.com/lumenlearn/mastery-engine/internal/ingest"
	"github.com/lumenlearn/mastery-engine/internal/mastery"
	"github.com/lumenlearn/mastery-engine/internal/observability"
	"github.com/lumenlearn/mastery-engine/internal/platform/envutil"
	"github.com/lumenlearn/mastery-engine/internal/platform/logger"
	"github.com/lumenlearn/mastery-engine/internal/platform/neo4jdb"
	"github.com/lumenlearn/mastery-engine/internal/platform/redisdb"
	"github.com/lumenlearn/mastery-engine/internal/profile"
	"github.com/lumenlearn/mastery-engine/internal/progress"
	"github.com/lumenlearn/mastery-engine/internal/scoring"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Engine parameters
	cfg := config.Load(envutil.String("ENGINE_CONFIG_PATH", ""), log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "mastery-engine",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	dbService, err := db.New(log)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("database migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Redis (optional score cache)
	rdb, err := redisdb.NewFromEnv(log)
	if err != nil {
		log.Warn("redis init failed, score caching disabled", "error", err)
	}
	scoreCache := scoring.NewCache(rdb, log)

	// Neo4j concept graph (optional; engine degrades to empty catalog)
	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("neo4j init failed, concept graph disabled", "error", err)
	}
	if neoClient != nil {
		defer neoClient.Close(context.Background())
	}
	gateway := graph.NewNeo4jGateway(neoClient, log)

	// Repos
	eventRepo := repos.NewInteractionEventRepo(gdb, log)
	responseRepo := repos.NewAssessmentResponseRepo(gdb, log)
	masteryRepo := repos.NewConceptMasteryRepo(gdb, log)
	profileRepo := repos.NewPreferenceProfileRepo(gdb, log)

	// Services
	resolver := concepts.NewResolver()
	masterySvc := mastery.NewService(gdb, masteryRepo, responseRepo, cfg, scoreCache, log)
	ingestSvc := ingest.NewService(eventRepo, gateway, resolver, masterySvc, log)
	progressSvc := progress.NewService(gateway, masteryRepo, eventRepo, resolver, log)
	profileSvc := profile.NewService(eventRepo, profileRepo, scoreCache, cfg.ProfileWindowDays, log)
	scoringSvc := scoring.NewService(masteryRepo, profileRepo, gateway, resolver, cfg, scoreCache, log)

	// HTTP
	server := httpx.NewServer(httpx.RouterConfig{
		Log:                log,
		InteractionHandler: httpH.NewInteractionHandler(log, ingestSvc),
		AssessmentHandler:  httpH.NewAssessmentHandler(log, masterySvc),
		ProgressHandler:    httpH.NewProgressHandler(log, progressSvc),
		ScoringHandler:     httpH.NewScoringHandler(log, scoringSvc),
		ProfileHandler:     httpH.NewProfileHandler(log, profileSvc),
		HealthHandler:      httpH.NewHealthHandler(gdb),
	})

	addr := envutil.String("API_ADDR", ":8080")
	log.Info("mastery engine listening", "addr", addr)
	if err := server.Run(addr); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
