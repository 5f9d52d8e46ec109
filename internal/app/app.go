package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"roboquest_backend/internal/config"
	"roboquest_backend/internal/controller"
	"roboquest_backend/internal/gamification"
	"roboquest_backend/internal/repository"
	"roboquest_backend/internal/seed"
	"roboquest_backend/internal/service"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/configwatcher"
	"roboquest_backend/pkg/database"
	"roboquest_backend/pkg/kvstore"
	"roboquest_backend/pkg/logger"
	"roboquest_backend/pkg/monitoring"
	"roboquest_backend/pkg/security"
	"roboquest_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Store  kvstore.Store

	repos           *repositories
	services        *services
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	stop            chan struct{}
}

type repositories struct {
	account  repository.AccountStore
	progress *repository.ProgressRepository
	settings *repository.SettingsRepository
	content  *repository.ContentRepository
	course   *repository.CourseRepository
	project  *repository.ProjectRepository
}

type services struct {
	auth     *service.AuthService
	progress *service.ProgressService
	content  *service.ContentService
	catalog  *service.CatalogService
	storage  *service.StorageService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	content     *controller.ContentController
	course      *controller.CourseController
	project     *controller.ProjectController
	leaderboard *controller.LeaderboardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig hands a reloaded config to every registered callback.
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(accounts repository.AccountStore, store kvstore.Store) *repositories {
	return &repositories{
		account:  accounts,
		progress: repository.NewProgressRepository(store),
		settings: repository.NewSettingsRepository(store),
		content:  repository.NewContentRepository(store),
		course:   repository.NewCourseRepository(store),
		project:  repository.NewProjectRepository(store),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}
	rules := gamification.NewRules(cfg.Gamification)

	s.storage = service.NewStorageService(cfg)
	s.progress = service.NewProgressService(
		repos.progress,
		repos.settings,
		repos.content,
		repos.course,
		repos.project,
		rules,
		cfg.Gamification.LeaderboardSize,
	)
	s.auth = service.NewAuthService(repos.account, s.progress, cfg)
	s.content = service.NewContentService(repos.content, s.storage, rules)
	s.catalog = service.NewCatalogService(repos.course, repos.project)

	return s
}

func (a *App) initControllers(s *services, components map[string]controller.Pinger) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.auth, s.progress),
		content:     controller.NewContentController(s.content, s.progress),
		course:      controller.NewCourseController(s.catalog, s.progress),
		project:     controller.NewProjectController(s.catalog, s.progress),
		leaderboard: controller.NewLeaderboardController(s.progress),
		health:      controller.NewHealthController(components),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(logger.GinLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// Build wires repositories, services and routes over the given backends.
// NewApp calls it after connecting to MySQL and Redis; tests call it directly.
func Build(cfg *config.Config, accounts repository.AccountStore, store kvstore.Store) *App {
	app := &App{
		Config: cfg,
		Store:  store,
		stop:   make(chan struct{}),
	}

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	app.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, window)

	app.repos = app.initRepositories(accounts, store)
	app.services = app.initServices(app.repos, cfg)
	controllers := app.initControllers(app.services, map[string]controller.Pinger{
		"kv":       store,
		"accounts": accounts,
	})

	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 管理员名单与限流可热更新
	app.RegisterConfigCallback(func(c *config.Config) {
		app.services.auth.SetAdmins(c.Admin)
		app.limiter.SetLimit(c.RateLimit.MaxRequests, time.Duration(c.RateLimit.WindowMinutes)*time.Minute)
		logger.Log.Info("Config reloaded",
			zap.Int("admins", len(c.Admin.Emails)),
			zap.Int("rate_limit", c.RateLimit.MaxRequests))
	})

	return app
}

// Seed loads the built-in catalog unless disabled.
func (a *App) Seed(ctx context.Context) error {
	if a.Config.SkipSeed {
		logger.Log.Info("Catalog seeding skipped")
		return nil
	}
	return seed.Run(ctx, seed.Repos{
		Content:  a.repos.content,
		Courses:  a.repos.course,
		Projects: a.repos.project,
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	store := kvstore.NewRedisStore(rdb, cfg.Redis.Prefix)
	app := Build(cfg, repository.NewAccountRepository(db), store)
	app.DB = db
	app.Redis = rdb

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("roboquest-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Seed(ctx); err != nil {
		logger.Log.Fatal("Failed to seed catalog", zap.Error(err))
	}

	return app
}

func (a *App) startBackgroundTasks(configDir string) {
	a.limiter.StartCleanup(a.stop)
	go configwatcher.WatchConfig(filepath.Join(configDir, "config.yaml"), a.ApplyConfig, a.stop)
}

func (a *App) Run(configDir string) {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.startBackgroundTasks(configDir)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	close(a.stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
