package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sketchbook/sketchbook/internal/app"
	"github.com/sketchbook/sketchbook/internal/config"
	"github.com/sketchbook/sketchbook/internal/database"
	"github.com/sketchbook/sketchbook/internal/drawing/repository"
	drawingservice "github.com/sketchbook/sketchbook/internal/drawing/service"
	"github.com/sketchbook/sketchbook/internal/sessions"
	"github.com/sketchbook/sketchbook/internal/storage"
	"github.com/sketchbook/sketchbook/internal/users"
	"github.com/sketchbook/sketchbook/pkg/logger"
	"github.com/sketchbook/sketchbook/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s mongo=%v minio=%v redis=%v", cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Storage.Endpoint != "", cfg.Redis.Host != "")
	if cfg.Server.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &app.Deps{
		Config:   cfg,
		Sessions: sessions.NewManager(cfg),
		Checks:   map[string]app.Check{},
	}

	// Redis is optional; it backs the shared rate limiter
	if cfg.Redis.Host != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis ping failed (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		deps.Redis = rdb
		deps.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		defer rdb.Close()
	}

	drawingRepo, userRepo, client := openRepositories(ctx, cfg)
	if client != nil {
		defer func() { _ = client.Disconnect(context.Background()) }()
		deps.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	}
	deps.Users = users.NewService(userRepo)
	if _, inMemory := userRepo.(*users.MemoryUserRepository); inMemory {
		if err := app.SeedUser(ctx, deps.Users, cfg.Seed); err != nil {
			logger.Fatalf("%v", err)
		}
		if cfg.Seed.Username == "" {
			logger.Warn("no SEED_USERNAME set; the in-memory user store is empty and every login will fail")
		}
	}

	var blobs storage.BlobStore
	if cfg.Storage.Endpoint != "" {
		mc, err := storage.NewMinIOStorage(ctx, cfg.Storage)
		if err != nil {
			logger.Fatalf("minio: %v", err)
		}
		logger.Infof("using minio bucket %q at %s", cfg.Storage.Bucket, cfg.Storage.Endpoint)
		blobs = mc
		deps.Checks["minio"] = mc.Ping
	} else {
		if cfg.Server.Production() {
			logger.Warn("MINIO_ENDPOINT not set; blobs are kept in memory and lost on restart")
		}
		local := storage.NewLocalStorage(cfg.Storage.PublicURL, []byte(cfg.JWT.Secret+"/blobs"))
		blobs = local
		deps.LocalBlobs = local
	}
	deps.Drawings = drawingservice.New(drawingRepo, blobs, cfg.Storage.SignedURLTTL)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("sketchbook listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// openRepositories connects to MongoDB when configured. Outside production an
// unreachable or unset database falls back to in-memory repositories.
func openRepositories(ctx context.Context, cfg *config.Config) (repository.Repository, users.UserRepository, *mongo.Client) {
	if cfg.MongoDB.URI == "" {
		if cfg.Server.Production() {
			logger.Fatalf("DB_URL is required in production")
		}
		logger.Warn("DB_URL not set; using in-memory repositories")
		return repository.NewMemoryRepo(), users.NewMemoryUserRepository(), nil
	}

	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		if cfg.Server.Production() {
			logger.Fatalf("%v", err)
		}
		logger.Warnf("%v; using in-memory repositories", err)
		return repository.NewMemoryRepo(), users.NewMemoryUserRepository(), nil
	}

	db := client.Database(cfg.MongoDB.Database)
	drawings := repository.NewMongoRepo(db.Collection(database.DrawingsCollection))
	if err := drawings.EnsureIndexes(ctx); err != nil {
		logger.Warnf("ensure drawing indexes: %v", err)
	}
	userRepo := users.NewMongoUserRepository(db.Collection(database.UsersCollection))
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Warnf("ensure user indexes: %v", err)
	}
	logger.Infof("connected to MongoDB database %q", cfg.MongoDB.Database)
	return drawings, userRepo, client
}
