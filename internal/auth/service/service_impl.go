package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	activitydomain "github.com/smallbiznis/stockroom/internal/activity/domain"
	"github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/password"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	settingdomain "github.com/smallbiznis/stockroom/internal/setting/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxNameLength  = 64
	secretBytes    = 32
	defaultTTL     = 12 * time.Hour
	sessionSubject = "manager"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	Clock    clock.Clock
	Settings settingdomain.Service
	Activity activitydomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	settings   settingdomain.Service
	activity   activitydomain.Service
	metrics    *obsmetrics.Metrics
	defaultPIN string
	issuer     string
	secret     []byte
	ttl        time.Duration
}

func New(p Params) (domain.Service, error) {
	log := p.Log.Named("auth.service")

	secret := []byte(strings.TrimSpace(p.Cfg.SessionSecret))
	if len(secret) == 0 {
		secret = make([]byte, secretBytes)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		log.Warn("SESSION_SECRET not set; manager sessions will not survive a restart")
	}

	ttl := time.Duration(p.Cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Service{
		db:         p.DB,
		log:        log,
		clock:      p.Clock,
		settings:   p.Settings,
		activity:   p.Activity,
		metrics:    p.Metrics,
		defaultPIN: p.Cfg.ManagerDefaultPIN,
		issuer:     p.Cfg.AppName,
		secret:     secret,
		ttl:        ttl,
	}, nil
}

func (s *Service) Unlock(ctx context.Context, req domain.UnlockRequest) (*domain.Session, error) {
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, domain.ErrInvalidName
	}

	ok, err := s.checkPIN(ctx, req.PIN)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordUnlock(ctx, ok)
	if !ok {
		if err := s.activity.Record(ctx, nil, activitydomain.RecordRequest{
			Action:     activitydomain.ActionUnlockFailed,
			TargetType: "setting",
			TargetID:   settingdomain.KeyManagerPIN,
		}); err != nil {
			s.log.Warn("failed to record unlock failure", zap.Error(err))
		}
		return nil, domain.ErrInvalidPIN
	}

	return s.issue(name)
}

// checkPIN compares pin against the stored value. The configured default
// only applies while no PIN row exists; a stored empty value matches
// nothing. A plaintext value left by an older install is re-hashed on its
// first successful match.
func (s *Service) checkPIN(ctx context.Context, pin string) (bool, error) {
	if pin == "" {
		return false, nil
	}

	stored, found, err := s.settings.Lookup(ctx, settingdomain.KeyManagerPIN)
	if err != nil {
		return false, err
	}
	if !found {
		return s.defaultPIN != "" && constantTimeEqual(pin, s.defaultPIN), nil
	}
	if password.IsEncoded(stored) {
		return password.Verify(pin, stored), nil
	}

	if stored == "" || !constantTimeEqual(pin, stored) {
		return false, nil
	}
	hashed, err := password.Hash(pin)
	if err != nil {
		return false, err
	}
	if err := s.settings.Set(ctx, nil, settingdomain.KeyManagerPIN, hashed); err != nil {
		s.log.Warn("failed to upgrade legacy manager pin", zap.Error(err))
	} else {
		s.log.Info("legacy manager pin re-hashed")
	}
	return true, nil
}

func (s *Service) issue(name string) (*domain.Session, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl).Truncate(time.Second)

	claims := domain.Claims{
		Role: domain.RoleManager,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		Token:     token,
		Role:      domain.RoleManager,
		Name:      name,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) ParseSession(ctx context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, domain.ErrInvalidSession
	}

	claims := &domain.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(sessionSubject),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, domain.ErrSessionExpired
		}
		return domain.Principal{}, domain.ErrInvalidSession
	}
	if !parsed.Valid || claims.Role != domain.RoleManager {
		return domain.Principal{}, domain.ErrInvalidSession
	}

	return domain.Principal{Role: claims.Role, Name: claims.Name}, nil
}

func (s *Service) ChangePIN(ctx context.Context, req domain.ChangePINRequest) error {
	pin := strings.TrimSpace(req.PIN)
	if pin == "" {
		return domain.ErrPINRequired
	}
	if pin != strings.TrimSpace(req.Confirm) {
		return domain.ErrPINMismatch
	}

	hashed, err := password.Hash(pin)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.settings.Set(ctx, tx, settingdomain.KeyManagerPIN, hashed); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, activitydomain.RecordRequest{
			Action:     activitydomain.ActionPINChanged,
			TargetType: "setting",
			TargetID:   settingdomain.KeyManagerPIN,
		})
	})
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
