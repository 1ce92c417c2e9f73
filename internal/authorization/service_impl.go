package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed model.conf
var modelText string

const (
	RoleRequestor = "requestor"
	RoleManager   = "manager"
)

const (
	ObjectCatalog  = "catalog"
	ObjectRequest  = "request"
	ObjectComment  = "comment"
	ObjectSettings = "settings"
	ObjectActivity = "activity"
)

const (
	ActionCatalogView       = "catalog.view"
	ActionCatalogManage     = "catalog.manage"
	ActionRequestSubmit     = "request.submit"
	ActionRequestView       = "request.view"
	ActionRequestTransition = "request.transition"
	ActionCommentPost       = "comment.post"
	ActionCommentRead       = "comment.read"
	ActionSettingsManage    = "settings.manage"
	ActionActivityView      = "activity.view"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds an in-memory enforcer from the embedded model and the
// built-in role policies. Managers inherit every requestor permission.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddGroupingPolicy(subject(RoleManager), subject(RoleRequestor)); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, object string, action string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(subject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func subject(role string) string {
	return "role:" + role
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Requestor permissions
		{subject(RoleRequestor), ObjectCatalog, ActionCatalogView},
		{subject(RoleRequestor), ObjectRequest, ActionRequestSubmit},
		{subject(RoleRequestor), ObjectRequest, ActionRequestView},
		{subject(RoleRequestor), ObjectComment, ActionCommentPost},
		{subject(RoleRequestor), ObjectComment, ActionCommentRead},

		// Manager permissions
		{subject(RoleManager), ObjectCatalog, ActionCatalogManage},
		{subject(RoleManager), ObjectRequest, ActionRequestTransition},
		{subject(RoleManager), ObjectSettings, ActionSettingsManage},
		{subject(RoleManager), ObjectActivity, ActionActivityView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
