package app

import (
	"log"
	"os"

	casbinpkg "github.com/fisker/officehub-backend/pkg/casbin"
	"github.com/fisker/officehub-backend/pkg/config"
	"github.com/fisker/officehub-backend/pkg/database"
	"github.com/fisker/officehub-backend/pkg/logger"
	pkgredis "github.com/fisker/officehub-backend/pkg/redis"
)

// Bootstrap 初始化基础设施（logger, database, redis, casbin）
func Bootstrap(cfgPath string) (*config.Config, error) {
	// 支持通过环境变量指定配置文件路径
	if cfgPath == "" {
		cfgPath = os.Getenv("OFFICEHUB_CONFIG")
		if cfgPath == "" {
			cfgPath = "config/config.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// Initialize logger
	if err := logger.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	logger.Infof("Database initialized successfully")

	// Initialize Redis (optional, for distributed locks)
	if err := pkgredis.Init(&cfg.Redis); err != nil {
		logger.Warnf("Redis initialization failed: %v", err)
		logger.Info("   → Parking claims fall back to row locks only (single-server mode)")
	} else if cfg.Redis.Enabled {
		logger.Infof("Redis initialized successfully - distributed locks enabled")
	} else {
		logger.Info("Redis is disabled in config - using database mode")
	}

	// Initialize Casbin route gate (after Redis, so Watcher can be configured)
	if err := casbinpkg.Init(); err != nil {
		logger.Fatalf("Failed to initialize Casbin: %v", err)
	}
	logger.Infof("Casbin route gate initialized successfully")

	return cfg, nil
}
