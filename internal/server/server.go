package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/papyrus/papyrus/backend/notes-api/handlers"
	"github.com/papyrus/papyrus/backend/notes-api/internal/config"
	"github.com/papyrus/papyrus/backend/notes-api/internal/database"
	notehandler "github.com/papyrus/papyrus/backend/notes-api/internal/note/handler"
	"github.com/papyrus/papyrus/backend/notes-api/internal/note/repository"
	"github.com/papyrus/papyrus/backend/notes-api/internal/note/service"
	"github.com/papyrus/papyrus/backend/notes-api/internal/storage"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/logger"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/metrics"
	"github.com/papyrus/papyrus/backend/notes-api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
)

// initialBackoff is the first wait between MongoDB connect attempts.
var initialBackoff = time.Second

// Server owns the HTTP engine and every long-lived client behind it.
type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	handler http.Handler

	mongo *mongo.Client
	redis *redis.Client
}

// New connects the configured backends and builds the HTTP handler. Only an
// unreachable MongoDB (when MONGODB_URI is set) is fatal; Redis and MinIO
// degrade to the in-process limiter and a disabled export.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{cfg: cfg}

	var db database.CollectionLister
	var repo repository.Repository
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.ConnectAttempts, initialBackoff, func(ctx context.Context) (*mongo.Client, error) {
			return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		})
		if err != nil {
			return nil, err
		}
		s.mongo = client
		mdb := client.Database(cfg.MongoDB.Database)
		db = mdb
		mrepo := repository.NewMongoRepo(mdb.Collection(cfg.MongoDB.Collection))
		if err := mrepo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("%v", err)
		}
		repo = mrepo
		logger.Infof("using MongoDB %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	} else {
		repo = repository.NewMemoryRepo()
		logger.Warnf("MONGODB_URI not set, notes are kept in memory")
	}

	opts := []service.Option{}
	if snaps := connectSnapshots(ctx, cfg.MinIO); snaps != nil {
		opts = append(opts, service.WithSnapshots(snaps, cfg.MinIO.URLTTL))
	}
	svc := service.New(repo, opts...)

	s.redis = connectRedis(ctx, cfg.Redis)

	s.engine = s.buildEngine(svc, db)
	s.handler = withCORS(s.engine)
	return s, nil
}

func (s *Server) buildEngine(svc service.Service, db database.CollectionLister) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	if rl := s.cfg.RateLimit; rl.Enabled {
		if rl.UseRedis && s.redis != nil {
			r.Use(middleware.RedisRateLimitMiddleware(s.redis, rl.RPS, rl.Burst, time.Duration(rl.WindowSeconds)*time.Second))
		} else {
			r.Use(middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
		}
	}

	handlers.RegisterStatusRoutes(r, db)
	handlers.RegisterSwagger(r)
	notehandler.RegisterNoteRoutes(r, svc)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return r
}

// withCORS allows every origin (reflected so credentials work), method and header.
func withCORS(h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(h)
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	addr := cfg.Addr()
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password, DB: cfg.DB})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		_ = client.Close()
		return nil
	}
	logger.Infof("connected to Redis: %s", addr)
	return client
}

func connectSnapshots(ctx context.Context, cfg config.MinIOConfig) service.SnapshotStore {
	if cfg.Endpoint == "" {
		return nil
	}
	st, err := storage.NewMinIOStorage(ctx, cfg)
	if err != nil {
		logger.Warnf("snapshot export disabled: %v", err)
		return nil
	}
	logger.Infof("snapshot export enabled: bucket=%s", st.Bucket())
	return st
}

// Handler is the CORS-wrapped engine.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("notes API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("shutting down (timeout %s)", s.cfg.Server.ShutdownTimeout)
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the database and cache clients.
func (s *Server) Close(ctx context.Context) error {
	var errs []error
	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Probe runs the /test check once against the configured database, for
// container health checks. A missing URI reports not connected.
func Probe(ctx context.Context, cfg *config.Config) database.ProbeResult {
	if cfg.MongoDB.URI == "" {
		return database.Probe(ctx, nil)
	}
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return database.ErrorResult(err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	return database.Probe(ctx, client.Database(cfg.MongoDB.Database))
}
