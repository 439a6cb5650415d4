package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/config"
	"github.com/locvowork/bi_dashboard/internal/database"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/handler"
	"github.com/locvowork/bi_dashboard/internal/logger"
	"github.com/locvowork/bi_dashboard/internal/repository"
	"github.com/locvowork/bi_dashboard/internal/service"
)

const (
	DataSourcePostgres = "postgres"
	DataSourceFixture  = "fixture"
)

type App struct {
	Echo            *echo.Echo
	DB              *sql.DB
	DataStoreClient *datastore.Client
	Index           *database.ElasticSearchClient
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// stores are the backends the services read from.
type stores struct {
	finance    domain.FinanceRepository
	hr         domain.HRRepository
	engagement domain.EngagementStore
	index      domain.EmployeeIndex
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	cfg := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(logger.Options{
		FilePath:   cfg.LOG_FILE_PATH,
		Level:      cfg.LOG_LEVEL,
		MaxSizeMB:  cfg.LOG_MAX_SIZE_MB,
		MaxBackups: cfg.LOG_MAX_BACKUPS,
	})
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	st, err := a.openStores(ctx)
	if err != nil {
		return err
	}

	templates, err := handler.LoadReportTemplates(cfg.REPORT_TEMPLATE_PATH)
	if err != nil {
		return fmt.Errorf("failed to load report templates: %w", err)
	}

	// Initialize dependencies
	sessions := handler.SessionConfig{
		Anchor: cfg.FINANCE_ANCHOR_DATE,
		Scope:  analytics.ParseMedianScope(cfg.RISK_MEDIAN_SCOPE),
		Now:    time.Now,
	}
	financeSvc := service.NewFinanceService(st.finance)
	hrSvc := service.NewHRService(st.hr, st.engagement, st.index)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(
		handler.NewFinanceHandler(financeSvc, sessions),
		handler.NewHRHandler(hrSvc, sessions),
		handler.NewExportHandler(financeSvc, hrSvc, sessions, templates),
	)

	return nil
}

// openStores connects the configured data source. Elasticsearch and Datastore
// are optional; a failure to reach them is logged and the feature degrades.
func (a *App) openStores(ctx context.Context) (stores, error) {
	cfg := config.DefaultEnvConfig
	var st stores

	switch cfg.DATA_SOURCE {
	case DataSourceFixture:
		f, err := database.LoadFixture(cfg.FIXTURE_PATH)
		if err != nil {
			return st, fmt.Errorf("failed to load fixture: %w", err)
		}
		mem := repository.NewMemoryRepository(f.Finance, f.HR)
		if err := mem.SaveScores(ctx, f.Engagement); err != nil {
			return st, err
		}
		st.finance, st.hr, st.engagement = mem, mem, mem
		logger.InfoLog(ctx, "Serving fixture %s from memory", cfg.FIXTURE_PATH)

	case DataSourcePostgres:
		db, err := database.NewPostgresDB(ctx, database.Config{
			Host:            cfg.DB_HOST,
			Port:            cfg.DB_PORT,
			User:            cfg.DB_USER,
			Password:        cfg.DB_PASSWORD,
			DBName:          cfg.DB_NAME,
			SSLMode:         cfg.DB_SSL_MODE,
			MaxOpenConns:    cfg.DB_MAX_OPEN_CONNS,
			MaxIdleConns:    cfg.DB_MAX_IDLE_CONNS,
			ConnMaxLifetime: cfg.DB_CONN_MAX_LIFETIME,
		})
		if err != nil {
			return st, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		st.finance = repository.NewFinanceRepository(db)
		st.hr = repository.NewHRRepository(db)
		logger.InfoLog(ctx, "Database connection established successfully")

	default:
		return st, fmt.Errorf("unknown DATA_SOURCE %q", cfg.DATA_SOURCE)
	}

	if cfg.DATASTORE_PROJECT_ID != "" {
		client, err := datastore.NewClient(ctx, cfg.DATASTORE_PROJECT_ID)
		if err != nil {
			logger.WarnLog(ctx, "Datastore unavailable, engagement trend disabled: %v", err)
		} else {
			a.DataStoreClient = client
			st.engagement = database.WrapDatastoreClient(client)
		}
	}

	if cfg.ELASTIC_URL != "" {
		es, err := database.NewElasticSearchClient(cfg.ELASTIC_URL, cfg.ELASTIC_INDEX)
		if err != nil {
			logger.WarnLog(ctx, "Elasticsearch unavailable, using in-process employee search: %v", err)
		} else {
			a.Index = es
			st.index = es
		}
	}

	return st, nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Validator = handler.NewValidator()
	a.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	a.Echo.Use(requestLogger)
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

// requestLogger scopes the request context logger to the request id.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		req := c.Request()
		ctx := logger.WithLogger(req.Context(), map[string]interface{}{"request_id": id})
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (a *App) RegisterRoutes(finance *handler.FinanceHandler, hr *handler.HRHandler, export *handler.ExportHandler) {
	api := a.Echo.Group("/api")

	financeGroup := api.Group("/finance")
	financeGroup.GET("/dashboard", finance.DashboardHandler)
	financeGroup.GET("/data/monthly", finance.MonthlyHandler)
	financeGroup.GET("/data/cashflow", finance.CashFlowHandler)
	financeGroup.GET("/data/working-capital", finance.WorkingCapitalHandler)
	financeGroup.GET("/data/aging", finance.AgingHandler)
	financeGroup.GET("/data/bridge", finance.BridgeHandler)
	financeGroup.GET("/invoices/ar", finance.ReceivablesHandler)
	financeGroup.GET("/invoices/ap", finance.PayablesHandler)
	financeGroup.GET("/metrics/working-capital", finance.WorkingCapitalMetricsHandler)
	financeGroup.GET("/filters", finance.FilterOptionsHandler)

	hrGroup := api.Group("/hr")
	hrGroup.GET("/dashboard", hr.DashboardHandler)
	hrGroup.GET("/attrition-risk", hr.AttritionRiskHandler)
	hrGroup.GET("/diversity", hr.DiversityHandler)
	hrGroup.GET("/hiring", hr.HiringHandler)
	hrGroup.GET("/compensation", hr.CompensationHandler)
	hrGroup.GET("/performance", hr.PerformanceHandler)
	hrGroup.GET("/recruiting", hr.RecruitingHandler)
	hrGroup.GET("/absence", hr.AbsenceHandler)
	hrGroup.GET("/engagement", hr.EngagementHandler)
	hrGroup.GET("/employees/search", hr.SearchEmployeesHandler)
	hrGroup.GET("/employees/:id", hr.GetEmployeeHandler)

	exportGroup := a.Echo.Group("/export")
	exportGroup.GET("/attrition-risk", export.AttritionRiskExportHandler)
	exportGroup.GET("/receivables", export.ReceivablesExportHandler)
}

func (a *App) Run() error {
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// Shutdown stops the server and releases the backends.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if a.DB != nil {
		a.DB.Close()
	}
	if a.DataStoreClient != nil {
		a.DataStoreClient.Close()
	}
	return err
}
