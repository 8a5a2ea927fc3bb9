package repository

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shortlink-geo/internal/config"
	"shortlink-geo/internal/model"
	"shortlink-geo/pkg/logging"
)

// NewDB 按驱动打开数据库连接并自动迁移
func NewDB(cfg config.DBConfig, gormLogger logger.Interface) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	if gormLogger == nil {
		gormLogger = logging.NewGormLogger(logging.Logger, logging.ToGormLogLevel(logging.AtomicLevel.Level()))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		// 唯一约束冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logging.Logger.Info("Database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "mysql":
		return mysql.Open(cfg.DSN), nil
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN), nil
	case "sqlite", "sqlite3":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// Migrate 建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Link{}, &model.Click{}, &model.DailyStat{})
}

// CloseDB 关闭底层连接池
func CloseDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logging.Logger.Warn("Failed to get sql.DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logging.Logger.Warn("Failed to close database", zap.Error(err))
	}
}
