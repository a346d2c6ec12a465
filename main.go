package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/robwestz/mcp-blcwrtr/pkg/collectors"
	"github.com/robwestz/mcp-blcwrtr/pkg/config"
	"github.com/robwestz/mcp-blcwrtr/pkg/database"
	"github.com/robwestz/mcp-blcwrtr/pkg/handlers"
	"github.com/robwestz/mcp-blcwrtr/pkg/logging"
	"github.com/robwestz/mcp-blcwrtr/pkg/mcp"
	"github.com/robwestz/mcp-blcwrtr/pkg/mcp/tools"
	"github.com/robwestz/mcp-blcwrtr/pkg/middleware"
	"github.com/robwestz/mcp-blcwrtr/pkg/repositories"
	"github.com/robwestz/mcp-blcwrtr/pkg/services"
	"github.com/robwestz/mcp-blcwrtr/pkg/services/workqueue"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", cfg.Database.Host),
		zap.Bool("mock_collectors", cfg.Collectors.UseMocks),
		zap.Int("pipeline_workers", cfg.Pipeline.Workers))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run over database/sql on top of the same pool.
	migrationDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(migrationDB, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories.
	orderRepo := repositories.NewOrderRepository(db)
	profileRepo := repositories.NewPublisherProfileRepository(db)
	portfolioRepo := repositories.NewPortfolioRepository(db)
	registryRepo := repositories.NewTrustRegistryRepository(db)
	matrixRepo := repositories.NewMatrixRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Signal collectors. Live SERP collectors need API credentials; the
	// deterministic mocks are the default outside production.
	var collector collectors.Collector = collectors.NewMockCollector(logger)
	if !cfg.Collectors.UseMocks {
		logger.Warn("live collectors not configured, falling back to mocks")
	}

	// Services.
	orderSvc := services.NewOrderService(orderRepo, reportRepo, auditRepo, logger)
	preflightSvc := services.NewPreflightService(
		orderRepo, profileRepo, portfolioRepo, registryRepo, matrixRepo, auditRepo, collector, logger)
	qcSvc := services.NewQCService(matrixRepo, registryRepo, reportRepo, auditRepo, logger)
	portfolioSvc := services.NewPortfolioService(portfolioRepo, logger)
	pool := workqueue.NewPool(workqueue.PoolConfig{MaxConcurrent: cfg.Pipeline.Workers}, logger)
	pipelineSvc := services.NewPipelineService(
		orderRepo, orderSvc, preflightSvc, qcSvc, pool,
		time.Duration(cfg.Pipeline.LeaseTTLSeconds)*time.Second, logger)

	// MCP server and tools.
	mcpServer := mcp.NewServer("mcp-blcwrtr", cfg.Version, logger)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	tools.RegisterOrderTools(mcpServer.MCP(), &tools.OrderToolDeps{OrderService: orderSvc, Logger: logger})
	tools.RegisterPreflightTool(mcpServer.MCP(), &tools.PreflightToolDeps{Pipeline: pipelineSvc, Logger: logger})
	tools.RegisterQCTool(mcpServer.MCP(), &tools.QCToolDeps{Pipeline: pipelineSvc, Logger: logger})
	tools.RegisterPortfolioTools(mcpServer.MCP(), &tools.PortfolioToolDeps{
		PortfolioService: portfolioSvc,
		PortfolioRepo:    portfolioRepo,
		Logger:           logger,
	})
	tools.RegisterBatchTool(mcpServer.MCP(), &tools.BatchToolDeps{Pipeline: pipelineSvc, Logger: logger})

	// HTTP surface.
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting mcp-blcwrtr", zap.String("addr", addr), zap.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
