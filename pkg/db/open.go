package db

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/prometheus"
)

// DSN builds the driver connection string. Every pooled connection gets
// WAL journaling, enforced foreign keys and the busy timeout. Transactions
// begin IMMEDIATE so a writer waits on the busy timeout at BEGIN instead of
// failing when it upgrades a read snapshot.
func DSN(cfg Config) string {
	busy := cfg.BusyTimeoutMS
	if busy <= 0 {
		busy = 5000
	}
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout("+strconv.Itoa(busy)+")")
	q.Add("_txlock", "immediate")
	return "file:" + cfg.Path + "?" + q.Encode()
}

// Open opens the database file, creating its directory when missing.
func Open(cfg Config, logger gormlogger.Interface) (*gorm.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	gormCfg := &gorm.Config{}
	if logger != nil {
		gormCfg.Logger = logger
	}
	conn, err := gorm.Open(sqlite.Open(DSN(cfg)), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return conn, nil
}

// Instrument attaches query spans and connection-pool gauges.
func Instrument(conn *gorm.DB, name string) error {
	if err := conn.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(name),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return fmt.Errorf("otelgorm: %w", err)
	}
	if err := conn.Use(prometheus.New(prometheus.Config{
		DBName:          name,
		RefreshInterval: 15,
	})); err != nil {
		return fmt.Errorf("gorm prometheus: %w", err)
	}
	return nil
}
