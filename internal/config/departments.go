package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/gosimple/slug"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultDepartments is the department list used when no departments file exists.
func DefaultDepartments() []string {
	return []string{
		"Automation-unit dose pharmacy",
		"Narcotic Pharmacy",
		"in-patient pharmacy",
		"IV Room",
		"Outpatient pharmacy",
		"ER pharmacy",
		"Manufacturing pharmacy",
		"Pharmaceutical Care Administration",
	}
}

type Department struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type DepartmentsConfig struct {
	Departments []Department
}

// Find resolves a department by exact name or by slug.
func (c DepartmentsConfig) Find(nameOrSlug string) (Department, bool) {
	key := strings.TrimSpace(nameOrSlug)
	if key == "" {
		return Department{}, false
	}
	for _, d := range c.Departments {
		if d.Name == key || d.Slug == key {
			return d, true
		}
	}
	return Department{}, false
}

// DepartmentsHolder keeps the latest valid department list and swaps it on file changes.
type DepartmentsHolder struct {
	current atomic.Value // holds DepartmentsConfig
}

func NewStaticDepartmentsHolder(names []string) (*DepartmentsHolder, error) {
	cfg, err := buildDepartments(names)
	if err != nil {
		return nil, err
	}
	holder := &DepartmentsHolder{}
	holder.current.Store(cfg)
	return holder, nil
}

func NewDepartmentsHolder(appCfg Config, log *zap.Logger) (*DepartmentsHolder, error) {
	v := viper.New()

	if appCfg.DepartmentsFile != "" {
		v.SetConfigFile(appCfg.DepartmentsFile)
	} else {
		v.SetConfigName("departments")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/stockroom")
		if appCfg.SharedDir != "" {
			v.AddConfigPath(appCfg.SharedDir)
		}
		v.AddConfigPath(".")
	}

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
		v.SetDefault("departments", DefaultDepartments())
	}

	cfg, err := buildDepartments(v.GetStringSlice("departments"))
	if err != nil {
		return nil, err
	}

	holder := &DepartmentsHolder{}
	holder.current.Store(cfg)

	if !found {
		return holder, nil
	}

	log = log.Named("config.departments")
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := buildDepartments(v.GetStringSlice("departments"))
		if err != nil {
			log.Warn("invalid departments config ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("departments reloaded", zap.String("file", e.Name), zap.Int("count", len(updated.Departments)))
	})
	v.WatchConfig()

	return holder, nil
}

func (h *DepartmentsHolder) Get() DepartmentsConfig {
	return h.current.Load().(DepartmentsConfig)
}

func buildDepartments(names []string) (DepartmentsConfig, error) {
	out := make([]Department, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		s := slug.Make(name)
		if _, dup := seen[s]; dup {
			return DepartmentsConfig{}, errors.New("departments: duplicate department " + name)
		}
		seen[s] = struct{}{}
		out = append(out, Department{Name: name, Slug: s})
	}
	if len(out) == 0 {
		return DepartmentsConfig{}, errors.New("departments cannot be empty")
	}
	return DepartmentsConfig{Departments: out}, nil
}
