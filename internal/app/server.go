package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fisker/officehub-backend/internal/api/router"
	"github.com/fisker/officehub-backend/pkg/config"
	"github.com/fisker/officehub-backend/pkg/database"
	"github.com/fisker/officehub-backend/pkg/logger"
	pkgredis "github.com/fisker/officehub-backend/pkg/redis"
)

// StartServer 启动 HTTP 服务器并等待退出信号
func StartServer(cfg *config.Config, handlers *Handlers, services *Services) {
	r := router.Setup(
		handlers.Auth,
		handlers.User,
		handlers.Attendance,
		handlers.Leave,
		handlers.Parking,
		handlers.Workspace,
		handlers.Cafeteria,
		handlers.ITSupport,
		handlers.Project,
		handlers.Holiday,
		handlers.Audit,
		services.Auth,
		cfg.Server.Mode,
	)

	addr := fmt.Sprintf(":%d", cfg.Server.APIPort)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	printStartupBanner(cfg)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Infof("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP server shutdown error: %v", err)
	} else {
		logger.Infof("HTTP server stopped")
	}

	database.Close()
	logger.Infof("Database closed")

	if cfg.Redis.Enabled {
		pkgredis.Close()
		logger.Infof("Redis closed")
	}

	logger.Infof("Shutdown complete")
}

// printStartupBanner 打印启动横幅
func printStartupBanner(cfg *config.Config) {
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("OfficeHub API Server")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
	logger.Infof("Modules:")
	logger.Infof("   • Employees & Org Hierarchy")
	logger.Infof("   • Attendance & Leave (multi-stage approval)")
	logger.Infof("   • Parking / Desks / Conference Rooms")
	logger.Infof("   • Cafeteria Orders")
	logger.Infof("   • IT Assets & Requests")
	logger.Infof("   • Projects & Holiday Calendar")
	logger.Infof("")
	logger.Infof("Listening on :%d (mode: %s)", cfg.Server.APIPort, cfg.Server.Mode)
	logger.Infof("Metrics at /metrics, health at /health")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
}
