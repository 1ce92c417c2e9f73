package observability

import (
	"strings"

	"github.com/smallbiznis/stockroom/internal/config"
)

// Config is the slice of application config the logging, tracing and
// metrics providers read.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig derives the observability settings. Tracing and metric export
// stay off unless OTEL_ENABLED is set, since most installs have no collector.
func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "stockroom"
	}
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	format := cfg.LogFormat
	if format == "" {
		format = "json"
	}
	protocol := cfg.OTLPProtocol
	if protocol != "http" {
		protocol = "grpc"
	}
	ratio := cfg.OTLPSamplingRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             level,
		LogFormat:            format,
		OtelEnabled:          cfg.OTLPEnabled,
		OtelExporterEndpoint: cfg.OTLPEndpoint,
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    ratio,
	}
}

// Debug reports whether verbose logging and gin debug mode apply.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
