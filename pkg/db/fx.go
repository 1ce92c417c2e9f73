package db

import (
	"context"

	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("db",
	fx.Provide(provide),
)

func provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dbCfg := ConfigFrom(cfg)
	conn, err := Open(dbCfg, logger.NewGormLogger(logger.DefaultGormLoggerConfig()))
	if err != nil {
		return nil, err
	}
	if err := Instrument(conn, "stockroom"); err != nil {
		return nil, err
	}

	log.Info("database opened", zap.String("path", dbCfg.Path))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return conn, nil
}
