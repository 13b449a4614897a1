package authz

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

//go:embed model.conf
var modelText string

var ErrForbidden = errors.New("forbidden")

const (
	ObjectClient       = "client"
	ObjectUser         = "user"
	ObjectAccount      = "account"
	ObjectWebsite      = "website"
	ObjectCampaign     = "campaign"
	ObjectTimeEntry    = "time_entry"
	ObjectChangeLog    = "change_log"
	ObjectNotification = "notification"
	ObjectReport       = "report"
	ObjectSettings     = "settings"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionClientAssignManager       = "client.assign_manager"
	ActionCampaignAssignContributor = "campaign.assign_contributor"
	ActionCampaignStatus            = "campaign.status"
	ActionTimeEntryUpdateAny        = "time_entry.update_any"
	ActionUserInvite                = "user.invite"
	ActionSettingsUpdate            = "settings.update"
	ActionReportExport              = "report.export"
)

// Service answers coarse role-to-capability questions. Which rows a caller may
// touch within a permitted object is decided by the scope helpers instead.
type Service interface {
	Require(actor authdomain.Principal, object, action string) error
	Can(actor authdomain.Principal, object, action string) bool
}

type ServiceImpl struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(enforcer *casbin.SyncedEnforcer) Service {
	return &ServiceImpl{enforcer: enforcer}
}

func (s *ServiceImpl) Require(actor authdomain.Principal, object, action string) error {
	if !s.Can(actor, object, action) {
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) Can(actor authdomain.Principal, object, action string) bool {
	if actor.Role == "" {
		return false
	}
	allowed, err := s.enforcer.Enforce(fmt.Sprintf("role:%s", actor.Role), object, action)
	if err != nil {
		return false
	}
	return allowed
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Owner permissions (full control)
		{"role:owner", ObjectClient, ActionView},
		{"role:owner", ObjectClient, ActionCreate},
		{"role:owner", ObjectClient, ActionUpdate},
		{"role:owner", ObjectClient, ActionDelete},
		{"role:owner", ObjectClient, ActionClientAssignManager},
		{"role:owner", ObjectUser, ActionView},
		{"role:owner", ObjectUser, ActionCreate},
		{"role:owner", ObjectUser, ActionUpdate},
		{"role:owner", ObjectUser, ActionDelete},
		{"role:owner", ObjectUser, ActionUserInvite},
		{"role:owner", ObjectAccount, ActionView},
		{"role:owner", ObjectAccount, ActionCreate},
		{"role:owner", ObjectAccount, ActionUpdate},
		{"role:owner", ObjectAccount, ActionDelete},
		{"role:owner", ObjectWebsite, ActionView},
		{"role:owner", ObjectWebsite, ActionCreate},
		{"role:owner", ObjectWebsite, ActionUpdate},
		{"role:owner", ObjectWebsite, ActionDelete},
		{"role:owner", ObjectCampaign, ActionView},
		{"role:owner", ObjectCampaign, ActionCreate},
		{"role:owner", ObjectCampaign, ActionUpdate},
		{"role:owner", ObjectCampaign, ActionDelete},
		{"role:owner", ObjectCampaign, ActionCampaignStatus},
		{"role:owner", ObjectCampaign, ActionCampaignAssignContributor},
		{"role:owner", ObjectTimeEntry, ActionView},
		{"role:owner", ObjectTimeEntry, ActionCreate},
		{"role:owner", ObjectTimeEntry, ActionUpdate},
		{"role:owner", ObjectTimeEntry, ActionDelete},
		{"role:owner", ObjectTimeEntry, ActionTimeEntryUpdateAny},
		{"role:owner", ObjectChangeLog, ActionView},
		{"role:owner", ObjectChangeLog, ActionCreate},
		{"role:owner", ObjectNotification, ActionView},
		{"role:owner", ObjectReport, ActionView},
		{"role:owner", ObjectReport, ActionReportExport},
		{"role:owner", ObjectSettings, ActionView},
		{"role:owner", ObjectSettings, ActionSettingsUpdate},

		// Manager permissions (assigned clients, via row scoping)
		{"role:manager", ObjectClient, ActionView},
		{"role:manager", ObjectUser, ActionView},
		{"role:manager", ObjectAccount, ActionView},
		{"role:manager", ObjectAccount, ActionCreate},
		{"role:manager", ObjectAccount, ActionUpdate},
		{"role:manager", ObjectWebsite, ActionView},
		{"role:manager", ObjectWebsite, ActionCreate},
		{"role:manager", ObjectWebsite, ActionUpdate},
		{"role:manager", ObjectCampaign, ActionView},
		{"role:manager", ObjectCampaign, ActionCreate},
		{"role:manager", ObjectCampaign, ActionUpdate},
		{"role:manager", ObjectCampaign, ActionCampaignStatus},
		{"role:manager", ObjectCampaign, ActionCampaignAssignContributor},
		{"role:manager", ObjectTimeEntry, ActionView},
		{"role:manager", ObjectTimeEntry, ActionCreate},
		{"role:manager", ObjectChangeLog, ActionView},
		{"role:manager", ObjectChangeLog, ActionCreate},
		{"role:manager", ObjectNotification, ActionView},
		{"role:manager", ObjectReport, ActionView},
		{"role:manager", ObjectReport, ActionReportExport},
		{"role:manager", ObjectSettings, ActionView},

		// Contributor permissions (assigned campaigns; no client access at all)
		{"role:contributor", ObjectWebsite, ActionView},
		{"role:contributor", ObjectCampaign, ActionView},
		{"role:contributor", ObjectTimeEntry, ActionView},
		{"role:contributor", ObjectTimeEntry, ActionCreate},
		{"role:contributor", ObjectTimeEntry, ActionUpdate},
		{"role:contributor", ObjectChangeLog, ActionView},
		{"role:contributor", ObjectNotification, ActionView},
		{"role:contributor", ObjectSettings, ActionView},

		// Client portal permissions (own client only)
		{"role:client", ObjectWebsite, ActionView},
		{"role:client", ObjectCampaign, ActionView},
		{"role:client", ObjectTimeEntry, ActionView},
		{"role:client", ObjectChangeLog, ActionView},
		{"role:client", ObjectNotification, ActionView},
		{"role:client", ObjectReport, ActionView},
	}

	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1], policy[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authz",
	fx.Provide(
		NewEnforcer,
		NewService,
	),
)
