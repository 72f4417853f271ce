// Package wire provides dependency injection for the nextaction application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	cliadapter "github.com/example/nextaction/internal/adapters/cli"
	"github.com/example/nextaction/internal/adapters/clock"
	"github.com/example/nextaction/internal/adapters/ical"
	"github.com/example/nextaction/internal/adapters/server"
	"github.com/example/nextaction/internal/adapters/sqlite"
	"github.com/example/nextaction/internal/app"
	"github.com/example/nextaction/internal/config"
	"github.com/example/nextaction/internal/core/recurrence"
	"github.com/example/nextaction/internal/core/zone"
	"github.com/example/nextaction/internal/ctxutil"
	"github.com/example/nextaction/internal/db"
	"github.com/example/nextaction/internal/ports/primary"
)

var (
	cfg    *config.Config
	logger *slog.Logger
	engine *recurrence.Engine

	taskService     primary.TaskService
	projectService  primary.ProjectService
	clientService   primary.ClientService
	contextService  primary.ContextService
	priorityService primary.PriorityService
	logService      primary.LogService
	sweepService    *app.SweepServiceImpl

	once sync.Once
)

// Configure sets the configuration used to build services. It must be called
// before the first service is requested.
func Configure(c *config.Config) {
	cfg = c
}

// Config returns the active configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the application logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// TaskService returns the singleton TaskService instance.
func TaskService() primary.TaskService {
	once.Do(initServices)
	return taskService
}

// ProjectService returns the singleton ProjectService instance.
func ProjectService() primary.ProjectService {
	once.Do(initServices)
	return projectService
}

// ClientService returns the singleton ClientService instance.
func ClientService() primary.ClientService {
	once.Do(initServices)
	return clientService
}

// ContextService returns the singleton ContextService instance.
func ContextService() primary.ContextService {
	once.Do(initServices)
	return contextService
}

// PriorityService returns the singleton PriorityService instance.
func PriorityService() primary.PriorityService {
	once.Do(initServices)
	return priorityService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

// SweepService returns the singleton overdue sweeper.
func SweepService() *app.SweepServiceImpl {
	once.Do(initServices)
	return sweepService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	if cfg == nil {
		log.Fatalf("wire: Configure must be called before services are used")
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid log level: %v", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	database, err := db.GetDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	engine = recurrence.NewEngineWithConfig(recurrence.EngineConfig{
		CacheEnabled: cfg.Cache.MaxEntries > 0,
		CacheConfig:  recurrence.CacheConfig{MaxEntries: cfg.Cache.MaxEntries},
		Horizon:      cfg.Horizon(),
	}).WithLogger(logger)

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	taskRepo := sqlite.NewTaskRepository(database)
	contextRepo := sqlite.NewContextRepository(database)
	projectRepo := sqlite.NewProjectRepository(database)
	clientRepo := sqlite.NewClientRepository(database)
	priorityRepo := sqlite.NewPriorityRepository(database)
	eventRepo := sqlite.NewTaskEventRepository(database)
	transactor := sqlite.NewTransactor(database)
	systemClock := clock.SystemClock{}
	eventWriter := sqlite.NewLogWriterAdapter(eventRepo, systemClock)

	// Create services (primary ports implementation)
	projectService = app.NewProjectService(projectRepo, clientRepo, transactor, systemClock)
	clientService = app.NewClientService(clientRepo, projectRepo, transactor, systemClock)
	contextService = app.NewContextService(contextRepo, taskRepo, transactor)
	priorityService = app.NewPriorityService(priorityRepo, transactor)
	logService = app.NewLogService(eventRepo, taskRepo)
	taskService = app.NewTaskService(
		taskRepo, contextRepo, projectService, eventWriter, transactor,
		systemClock, engine, cfg.Timezone, logger,
	)
	sweepService = app.NewSweepService(taskRepo, systemClock, logger)
}

// Location returns the configured display timezone.
func Location() *time.Location {
	loc, err := zone.Load(cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Exporter returns a new iCalendar exporter writing dates in the configured timezone.
func Exporter() *ical.Exporter {
	once.Do(initServices)
	return ical.NewExporter(taskService, contextService, engine, Location())
}

// ServerConfig returns the HTTP API configuration over the singleton services.
func ServerConfig() server.Config {
	once.Do(initServices)
	return server.Config{
		Tasks:        taskService,
		Projects:     projectService,
		Clients:      clientService,
		Contexts:     contextService,
		Priorities:   priorityService,
		Events:       logService,
		Calendar:     Exporter(),
		DefaultActor: ctxutil.LocalActor(),
		Logger:       logger,
	}
}

// TaskAdapter returns a new TaskAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func TaskAdapter() *cliadapter.TaskAdapter {
	return TaskAdapterWithOutput(os.Stdout)
}

// TaskAdapterWithOutput returns a new TaskAdapter writing to the given output.
func TaskAdapterWithOutput(out io.Writer) *cliadapter.TaskAdapter {
	once.Do(initServices)
	return cliadapter.NewTaskAdapter(taskService, logService, Location(), out)
}

// LedgerAdapter returns a new LedgerAdapter writing to stdout.
func LedgerAdapter() *cliadapter.LedgerAdapter {
	once.Do(initServices)
	return cliadapter.NewLedgerAdapter(contextService, projectService, clientService, priorityService, os.Stdout)
}
