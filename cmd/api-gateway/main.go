package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/student-profile-api/api/swagger"
	"github.com/noah-isme/student-profile-api/internal/grading"
	"github.com/noah-isme/student-profile-api/internal/handler"
	internalmiddleware "github.com/noah-isme/student-profile-api/internal/middleware"
	"github.com/noah-isme/student-profile-api/internal/repository"
	"github.com/noah-isme/student-profile-api/internal/service"
	"github.com/noah-isme/student-profile-api/migrations"
	"github.com/noah-isme/student-profile-api/pkg/cache"
	"github.com/noah-isme/student-profile-api/pkg/config"
	"github.com/noah-isme/student-profile-api/pkg/database"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
	"github.com/noah-isme/student-profile-api/pkg/jobs"
	"github.com/noah-isme/student-profile-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-profile-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-profile-api/pkg/middleware/requestid"
	"github.com/noah-isme/student-profile-api/pkg/observability"
	"github.com/noah-isme/student-profile-api/pkg/storage"
)

// @title Student Profile API
// @version 1.0.0
// @description Student profile, subject history and GPA tracking
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	flushSentry, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Sentry.Release)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flushSentry()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB, migrations.FS, cfg.Database.MigrationsDir, logr); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	r, stopWorkers, err := buildRouter(ctx, cfg, logr, db, redisClient)
	if err != nil {
		logr.Fatal("failed to build router", zap.Error(err))
	}
	defer stopWorkers()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Open subject streams end when the shutdown signal cancels ctx.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildRouter(ctx context.Context, cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*gin.Engine, func(), error) {
	validate := validator.New()
	appErrors.UseJSONNames(validate)
	if err := grading.RegisterValidation(validate); err != nil {
		return nil, nil, err
	}
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		appErrors.UseJSONNames(engine)
	}

	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	summaryStore := repository.NewSummaryCacheRepository(redisClient, logr)

	var feed repository.SubjectFeed
	if redisClient != nil {
		feed = repository.NewRedisSubjectFeed(redisClient, logr)
	} else {
		feed = repository.NewLocalSubjectFeed()
	}

	transcriptStore, err := storage.NewLocalStorage(cfg.Transcripts.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signingSecret := cfg.Transcripts.SignedURLSecret
	if signingSecret == "" {
		signingSecret = cfg.JWT.Secret
	}
	signer := storage.NewSignedURLSigner(signingSecret, cfg.Transcripts.SignedURLTTL)

	summaryCache := service.NewSummaryCache(summaryStore, metricsSvc, cfg.Grades.CacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, metricsSvc, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		DefaultStatus:      cfg.Profile.DefaultStatus,
		PhotoMaxBytes:      cfg.Profile.PhotoMaxBytes,
	})
	profileSvc := service.NewProfileService(profileRepo, validate, logr, cfg.Profile.PhotoMaxBytes)
	subjectSvc := service.NewSubjectService(subjectRepo, feed, summaryCache, metricsSvc, validate, logr)
	transcriptSvc := service.NewTranscriptService(subjectSvc, profileSvc, transcriptStore, signer, metricsSvc, logr)

	sweeps := jobs.New("transcript-sweep", func(ctx context.Context, _ jobs.Task) error {
		_, err := transcriptSvc.Sweep(ctx)
		return err
	}, jobs.Config{Workers: 1, BufferSize: 4, Logger: logr})
	sweeps.Start(ctx)
	transcriptSvc.UseSweepQueue(sweeps)

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc, cfg.Profile.PhotoMaxBytes)
	subjectHandler := handler.NewSubjectHandler(subjectSvc, cfg.Grades.StreamHeartbeat)
	gradeHandler := handler.NewGradeHandler(subjectSvc, transcriptSvc, cfg.APIPrefix+"/transcripts/download")
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr,
		logger.SkipPaths("/health", "/ready", "/metrics"),
		logger.WithFields(internalmiddleware.UserLogFields),
	))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.BodyLimit(service.PhotoBodyLimit(cfg.Profile.PhotoMaxBytes)))

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	api.GET("/grades/scale", gradeHandler.Scale)
	api.GET("/transcripts/download", gradeHandler.DownloadTranscript)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/profile", profileHandler.Get)
	secured.PATCH("/profile", profileHandler.Update)
	secured.POST("/profile/photo", profileHandler.UploadPhoto)

	subjects := secured.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.POST("", subjectHandler.Create)
	subjects.POST("/done", subjectHandler.CreateDone)
	subjects.POST("/in-progress", subjectHandler.CreateInProgress)
	subjects.GET("/stream", subjectHandler.Stream)

	grades := secured.Group("/grades")
	grades.GET("/summary", gradeHandler.Summary)
	grades.GET("/transcript", gradeHandler.Transcript)
	grades.POST("/transcript/share", gradeHandler.ShareTranscript)

	secured.GET("/system/metrics", metricsHandler.System)

	return r, sweeps.Stop, nil
}
