package db

import (
	"time"

	"github.com/smallbiznis/stockroom/internal/config"
)

type Config struct {
	Path            string
	BusyTimeoutMS   int
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Path:            cfg.DBPath(),
		BusyTimeoutMS:   cfg.DBBusyTimeoutMS,
		MaxIdleConn:     cfg.DBMaxIdleConn,
		MaxOpenConn:     cfg.DBMaxOpenConn,
		ConnMaxLifetime: time.Hour,
	}
}
