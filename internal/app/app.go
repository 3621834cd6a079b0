package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/class-record-api/internal/handler"
	"github.com/noah-isme/class-record-api/internal/repository"
	"github.com/noah-isme/class-record-api/internal/service"
	"github.com/noah-isme/class-record-api/pkg/cache"
	"github.com/noah-isme/class-record-api/pkg/config"
	"github.com/noah-isme/class-record-api/pkg/database"
	"github.com/noah-isme/class-record-api/pkg/export"
)

// Repositories groups the SQL stores.
type Repositories struct {
	Subjects   *repository.SubjectRepository
	Sections   *repository.SectionRepository
	Students   *repository.StudentRepository
	Grades     *repository.GradeRepository
	Attendance *repository.AttendanceRepository
	Teachers   *repository.TeacherRepository
	Trash      *repository.TrashRepository
	Stats      *repository.StatsRepository
}

// Services groups the domain services.
type Services struct {
	Metrics    *service.MetricsService
	Cache      *service.CacheService
	Trash      *service.TrashService
	Enrollment *service.EnrollmentService
	Attendance *service.AttendanceService
	Catalog    *service.CatalogService
	Students   *service.StudentService
	Auth       *service.AuthService
	Dashboard  *service.DashboardService
	Export     *service.ExportService
}

// App owns the process-wide resources shared by the server and the admin tool.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Redis    *redis.Client
	Repos    Repositories
	Services Services
}

// New opens the record store, migrates it when configured and builds every
// service. Redis is optional: when it cannot be reached the dashboard runs
// uncached.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	validate, err := service.NewValidator()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	var client *redis.Client
	if cfg.Dashboard.CacheEnabled {
		client, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("dashboard cache disabled", zap.Error(err))
			client = nil
		}
	}

	a := &App{Config: cfg, Logger: logger, DB: db, Redis: client}
	a.Repos = newRepositories(db)
	a.Services = newServices(cfg, logger, db, client, validate, a.Repos)
	return a, nil
}

func newRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Subjects:   repository.NewSubjectRepository(db),
		Sections:   repository.NewSectionRepository(db),
		Students:   repository.NewStudentRepository(db),
		Grades:     repository.NewGradeRepository(db),
		Attendance: repository.NewAttendanceRepository(db),
		Teachers:   repository.NewTeacherRepository(db),
		Trash:      repository.NewTrashRepository(db),
		Stats:      repository.NewStatsRepository(db),
	}
}

func newServices(cfg *config.Config, logger *zap.Logger, db *sqlx.DB, client *redis.Client, validate *validator.Validate, repos Repositories) Services {
	tx := database.NewTxManager(db)
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(client, logger),
		metrics,
		cfg.Dashboard.CacheTTL,
		logger,
		client != nil,
	)

	trash := service.NewTrashService(service.TrashServiceDeps{
		Tx:         tx,
		Students:   repos.Students,
		Sections:   repos.Sections,
		Grades:     repos.Grades,
		Attendance: repos.Attendance,
		Trash:      repos.Trash,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Logger:     logger,
	})

	return Services{
		Metrics:    metrics,
		Cache:      cacheSvc,
		Trash:      trash,
		Enrollment: service.NewEnrollmentService(tx, repos.Students, repos.Subjects, repos.Grades, trash, cacheSvc, validate, logger),
		Attendance: service.NewAttendanceService(tx, repos.Grades, repos.Attendance, repos.Subjects, cacheSvc, validate, logger),
		Catalog: service.NewCatalogService(service.CatalogServiceDeps{
			Tx:         tx,
			Subjects:   repos.Subjects,
			Sections:   repos.Sections,
			Students:   repos.Students,
			Grades:     repos.Grades,
			Attendance: repos.Attendance,
			Teachers:   repos.Teachers,
			Trash:      trash,
			Cache:      cacheSvc,
			Metrics:    metrics,
			Validator:  validate,
			Logger:     logger,
		}),
		Students: service.NewStudentService(tx, repos.Students, repos.Sections, repos.Grades, cacheSvc, validate, logger),
		Auth: service.NewAuthService(tx, repos.Teachers, repos.Subjects, validate, logger, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceParams{
			Stats:      repos.Stats,
			Subjects:   repos.Subjects,
			Grades:     repos.Grades,
			Attendance: repos.Attendance,
			Cache:      cacheSvc,
			CacheTTL:   cfg.Dashboard.CacheTTL,
			Logger:     logger,
		}),
		Export: service.NewExportService(repos.Grades, repos.Attendance, repos.Subjects, export.NewCSVExporter(), export.NewPDFExporter(), logger),
	}
}

// Handlers builds the HTTP handlers on top of the services.
func (a *App) Handlers() handler.Handlers {
	s := a.Services
	return handler.Handlers{
		Auth:       handler.NewAuthHandler(s.Auth),
		Subjects:   handler.NewSubjectHandler(s.Catalog),
		Sections:   handler.NewSectionHandler(s.Catalog),
		Teachers:   handler.NewTeacherHandler(s.Auth, s.Catalog),
		Students:   handler.NewStudentHandler(s.Students),
		Grades:     handler.NewGradeHandler(s.Enrollment),
		Attendance: handler.NewAttendanceHandler(s.Attendance),
		Trash:      handler.NewTrashHandler(s.Trash, s.Auth),
		Dashboard:  handler.NewDashboardHandler(s.Dashboard),
		Export:     handler.NewExportHandler(s.Export),
	}
}

// Guards returns the middleware collaborators for RegisterRoutes.
func (a *App) Guards() handler.RouteGuards {
	return handler.RouteGuards{
		Tokens:   a.Services.Auth,
		Subjects: a.Services.Auth,
		Logger:   a.Logger,
	}
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	return a.DB.Close()
}
