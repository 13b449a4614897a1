package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/pkg/db"
)

func newTestAuthz(t *testing.T) Service {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)

	enforcer, err := NewEnforcer(dbConn)
	require.NoError(t, err)
	return NewService(enforcer)
}

func TestPolicyMatrix(t *testing.T) {
	svc := newTestAuthz(t)

	owner := authdomain.Principal{ID: 1, Role: authdomain.RoleOwner}
	manager := authdomain.Principal{ID: 2, Role: authdomain.RoleManager}
	contributor := authdomain.Principal{ID: 3, Role: authdomain.RoleContributor}
	portal := authdomain.Principal{ID: 4, Role: authdomain.RoleClient}

	cases := []struct {
		name    string
		actor   authdomain.Principal
		object  string
		action  string
		allowed bool
	}{
		{"owner deletes clients", owner, ObjectClient, ActionDelete, true},
		{"owner invites users", owner, ObjectUser, ActionUserInvite, true},
		{"owner updates settings", owner, ObjectSettings, ActionSettingsUpdate, true},

		{"manager views clients", manager, ObjectClient, ActionView, true},
		{"manager cannot create clients", manager, ObjectClient, ActionCreate, false},
		{"manager cannot delete clients", manager, ObjectClient, ActionDelete, false},
		{"manager creates accounts", manager, ObjectAccount, ActionCreate, true},
		{"manager changes campaign status", manager, ObjectCampaign, ActionCampaignStatus, true},
		{"manager cannot invite users", manager, ObjectUser, ActionUserInvite, false},
		{"manager cannot update settings", manager, ObjectSettings, ActionSettingsUpdate, false},
		{"manager exports reports", manager, ObjectReport, ActionReportExport, true},
		{"manager logs time", manager, ObjectTimeEntry, ActionCreate, true},
		{"manager cannot delete time entries", manager, ObjectTimeEntry, ActionDelete, false},

		{"contributor logs time", contributor, ObjectTimeEntry, ActionCreate, true},
		{"contributor cannot view clients", contributor, ObjectClient, ActionView, false},
		{"contributor cannot delete time entries", contributor, ObjectTimeEntry, ActionDelete, false},
		{"contributor views campaigns", contributor, ObjectCampaign, ActionView, true},
		{"contributor cannot create campaigns", contributor, ObjectCampaign, ActionCreate, false},
		{"contributor cannot change campaign status", contributor, ObjectCampaign, ActionCampaignStatus, false},
		{"contributor cannot assign managers", contributor, ObjectClient, ActionClientAssignManager, false},

		{"client views websites", portal, ObjectWebsite, ActionView, true},
		{"client views change log", portal, ObjectChangeLog, ActionView, true},
		{"client cannot create change log entries", portal, ObjectChangeLog, ActionCreate, false},
		{"client cannot log time", portal, ObjectTimeEntry, ActionCreate, false},
		{"client cannot view users", portal, ObjectUser, ActionView, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.allowed, svc.Can(tc.actor, tc.object, tc.action))
		})
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	svc := newTestAuthz(t)

	portal := authdomain.Principal{ID: 4, Role: authdomain.RoleClient}
	require.ErrorIs(t, svc.Require(portal, ObjectClient, ActionDelete), ErrForbidden)
	require.NoError(t, svc.Require(portal, ObjectWebsite, ActionView))
}

func TestUnknownRoleDenied(t *testing.T) {
	svc := newTestAuthz(t)

	require.False(t, svc.Can(authdomain.Principal{ID: 9, Role: "intern"}, ObjectClient, ActionView))
	require.False(t, svc.Can(authdomain.Principal{ID: 9}, ObjectClient, ActionView))
}

func TestSeedPoliciesIdempotent(t *testing.T) {
	dbConn, err := db.NewTest()
	require.NoError(t, err)

	first, err := NewEnforcer(dbConn)
	require.NoError(t, err)
	seeded, err := first.GetPolicy()
	require.NoError(t, err)
	require.NotEmpty(t, seeded)

	// A second boot against the same database must not duplicate rows.
	second, err := NewEnforcer(dbConn)
	require.NoError(t, err)
	reseeded, err := second.GetPolicy()
	require.NoError(t, err)
	require.Len(t, reseeded, len(seeded))
}
