package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradejournal/internal/access"
	"tradejournal/internal/audit"
	"tradejournal/internal/auth"
	"tradejournal/internal/blob"
	"tradejournal/internal/config"
	cronrunner "tradejournal/internal/cron"
	"tradejournal/internal/db"
	"tradejournal/internal/handler"
	"tradejournal/internal/logger"
	gormrepository "tradejournal/internal/repository/gorm"
	"tradejournal/internal/service"
)

func main() {
	cfgPath := os.Getenv("TJ_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("TJ_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Driver, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	resolver := &access.Resolver{Repo: store}
	authSvc := &auth.Service{Repo: store}
	ledgerSvc := &service.LedgerService{Repo: store, Logger: logger}
	catalogSvc := &service.CatalogService{Repo: store}
	metricsSvc := &service.MetricsService{Repo: store}
	docsSvc := &service.DocumentationService{Repo: store, Access: resolver}
	blobClient := blob.New(cfg.Blob)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(auth.Middleware(authSvc, cfg.Auth.Disabled))
	engine.Use(audit.WriteAuditMiddleware(store, logger))

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	authHandler := &handler.AuthHandler{Auth: authSvc}
	authHandler.Register(engine)
	accountHandler := &handler.AccountHandler{Ledger: ledgerSvc}
	accountHandler.Register(engine)
	tradeHandler := &handler.TradeHandler{Ledger: ledgerSvc}
	tradeHandler.Register(engine)
	catalogHandler := &handler.CatalogHandler{Catalog: catalogSvc}
	catalogHandler.Register(engine)
	dashboardHandler := &handler.DashboardHandler{Metrics: metricsSvc}
	dashboardHandler.Register(engine)
	docsHandler := &handler.DocumentationHandler{Docs: docsSvc}
	docsHandler.Register(engine)
	screenshotHandler := &handler.ScreenshotHandler{Docs: docsSvc, Blob: blobClient}
	screenshotHandler.Register(engine)
	auditHandler := &handler.AuditLogHandler{Repo: store}
	auditHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err := cronRunner.Add(cfg.Cron.BalanceAudit, func(ctx context.Context) {
			if err := ledgerSvc.AuditBalances(ctx); err != nil {
				logger.Warn("balance audit failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register balance audit failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
