package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
	campaigndomain "github.com/agencydesk/agencydesk/internal/campaign/domain"
	clientdomain "github.com/agencydesk/agencydesk/internal/client/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	"github.com/agencydesk/agencydesk/internal/report/domain"
	timeentrydomain "github.com/agencydesk/agencydesk/internal/timeentry/domain"
	"github.com/agencydesk/agencydesk/pkg/db"
)

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node

	clientA snowflake.ID
	clientB snowflake.ID

	campaignA1 snowflake.ID // active, clientA
	campaignA2 snowflake.ID // completed, clientA
	campaignB1 snowflake.ID // active, clientB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&clientdomain.Client{},
		&clientdomain.ClientManager{},
		&campaigndomain.Campaign{},
		&campaigndomain.Contributor{},
		&timeentrydomain.TimeEntry{},
		&authdomain.User{},
		&notifdomain.Notification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		svc:  New(Params{DB: dbConn, Log: zap.NewNop()}),
		db:   dbConn,
		node: node,
	}

	now := time.Now().UTC()
	f.clientA = node.Generate()
	f.clientB = node.Generate()
	for _, c := range []clientdomain.Client{
		{ID: f.clientA, Name: "Acme", Slug: "acme", Status: "active", CreatedAt: now, UpdatedAt: now},
		{ID: f.clientB, Name: "Globex", Slug: "globex", Status: "active", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, dbConn.Create(&c).Error)
	}

	f.campaignA1 = node.Generate()
	f.campaignA2 = node.Generate()
	f.campaignB1 = node.Generate()
	for _, c := range []campaigndomain.Campaign{
		{ID: f.campaignA1, WebsiteID: node.Generate(), ClientID: f.clientA, Name: "Spring Launch", Status: campaigndomain.StatusActive, CreatedAt: now, UpdatedAt: now},
		{ID: f.campaignA2, WebsiteID: node.Generate(), ClientID: f.clientA, Name: "Winter Wrap", Status: campaigndomain.StatusCompleted, CreatedAt: now, UpdatedAt: now},
		{ID: f.campaignB1, WebsiteID: node.Generate(), ClientID: f.clientB, Name: "Rebrand", Status: campaigndomain.StatusActive, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, dbConn.Create(&c).Error)
	}
	return f
}

func (f *fixture) seedUser(t *testing.T, name, role string) snowflake.ID {
	t.Helper()

	id := f.node.Generate()
	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&authdomain.User{
		ID: id, Name: name, Email: name + "@agency.test", Role: role,
		Status: authdomain.StatusActive, CreatedAt: now, UpdatedAt: now,
	}).Error)
	return id
}

func (f *fixture) seedEntry(t *testing.T, userID, campaignID, clientID snowflake.ID, hours float64) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, f.db.Create(&timeentrydomain.TimeEntry{
		ID: f.node.Generate(), UserID: userID, CampaignID: campaignID,
		ClientID: clientID, WebsiteID: f.node.Generate(),
		Date: now, Hours: hours, Description: "seeded reporting entry",
		CreatedAt: now, UpdatedAt: now,
	}).Error)
}

func TestDashboardScopedForManager(t *testing.T) {
	f := newFixture(t)
	managerID := f.seedUser(t, "mona", authdomain.RoleManager)
	require.NoError(t, f.db.Create(&clientdomain.ClientManager{
		ID: f.node.Generate(), ClientID: f.clientA, UserID: managerID,
	}).Error)
	f.seedEntry(t, managerID, f.campaignA1, f.clientA, 3)
	require.NoError(t, f.db.Create(&notifdomain.Notification{
		ID: f.node.Generate(), UserID: managerID, Type: "campaign_status",
		Message: "status changed", CreatedAt: time.Now().UTC(),
	}).Error)

	manager := authdomain.Principal{ID: managerID, Name: "mona", Role: authdomain.RoleManager}
	stats, err := f.svc.Dashboard(context.Background(), manager)
	require.NoError(t, err)

	require.EqualValues(t, 1, stats.Clients)
	require.EqualValues(t, 1, stats.ActiveCampaigns)
	require.EqualValues(t, 1, stats.CampaignStatus.Completed)
	require.InDelta(t, 3, stats.HoursThisMonth, 0.001)
	require.EqualValues(t, 1, stats.UnreadNotifications)
}

func TestDashboardOwnerSeesEverything(t *testing.T) {
	f := newFixture(t)
	ownerID := f.seedUser(t, "olive", authdomain.RoleOwner)
	f.seedEntry(t, ownerID, f.campaignA1, f.clientA, 2)
	f.seedEntry(t, ownerID, f.campaignB1, f.clientB, 1.5)

	owner := authdomain.Principal{ID: ownerID, Name: "olive", Role: authdomain.RoleOwner}
	stats, err := f.svc.Dashboard(context.Background(), owner)
	require.NoError(t, err)

	require.EqualValues(t, 2, stats.Clients)
	require.EqualValues(t, 2, stats.ActiveCampaigns)
	require.InDelta(t, 3.5, stats.HoursThisMonth, 0.001)
}

func TestHoursByClientAggregates(t *testing.T) {
	f := newFixture(t)
	ownerID := f.seedUser(t, "olive", authdomain.RoleOwner)
	f.seedEntry(t, ownerID, f.campaignA1, f.clientA, 2)
	f.seedEntry(t, ownerID, f.campaignA2, f.clientA, 1)
	f.seedEntry(t, ownerID, f.campaignB1, f.clientB, 4)

	owner := authdomain.Principal{ID: ownerID, Name: "olive", Role: authdomain.RoleOwner}
	rows, err := f.svc.HoursByClient(context.Background(), owner, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "Globex", rows[0].ClientName)
	require.InDelta(t, 4, rows[0].Hours, 0.001)
	require.Equal(t, "Acme", rows[1].ClientName)
	require.InDelta(t, 3, rows[1].Hours, 0.001)
	require.EqualValues(t, 2, rows[1].Entries)
}

func TestHoursByCampaignClientFilter(t *testing.T) {
	f := newFixture(t)
	ownerID := f.seedUser(t, "olive", authdomain.RoleOwner)
	f.seedEntry(t, ownerID, f.campaignA1, f.clientA, 2)
	f.seedEntry(t, ownerID, f.campaignB1, f.clientB, 4)

	owner := authdomain.Principal{ID: ownerID, Name: "olive", Role: authdomain.RoleOwner}
	rows, err := f.svc.HoursByCampaign(context.Background(), owner, &f.clientA, domain.DateRange{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Spring Launch", rows[0].CampaignName)
	require.Equal(t, "Acme", rows[0].ClientName)
}

func TestMyHoursCountsOnlyOwnEntries(t *testing.T) {
	f := newFixture(t)
	carlID := f.seedUser(t, "carl", authdomain.RoleContributor)
	otherID := f.seedUser(t, "dana", authdomain.RoleContributor)
	f.seedEntry(t, carlID, f.campaignA1, f.clientA, 2.5)
	f.seedEntry(t, carlID, f.campaignB1, f.clientB, 1)
	f.seedEntry(t, otherID, f.campaignA1, f.clientA, 8)

	carl := authdomain.Principal{ID: carlID, Name: "carl", Role: authdomain.RoleContributor}
	summary, err := f.svc.MyHours(context.Background(), carl, domain.DateRange{})
	require.NoError(t, err)

	require.InDelta(t, 3.5, summary.TotalHours, 0.001)
	require.EqualValues(t, 2, summary.Entries)
	require.Len(t, summary.ByCampaign, 2)
}

func TestClientSummary(t *testing.T) {
	f := newFixture(t)
	ownerID := f.seedUser(t, "olive", authdomain.RoleOwner)
	carlID := f.seedUser(t, "carl", authdomain.RoleContributor)
	f.seedEntry(t, ownerID, f.campaignA1, f.clientA, 2)
	f.seedEntry(t, carlID, f.campaignA2, f.clientA, 3)
	f.seedEntry(t, carlID, f.campaignB1, f.clientB, 9)

	owner := authdomain.Principal{ID: ownerID, Name: "olive", Role: authdomain.RoleOwner}
	summary, err := f.svc.ClientSummary(context.Background(), owner, f.clientA)
	require.NoError(t, err)

	require.Equal(t, "Acme", summary.ClientName)
	require.InDelta(t, 5, summary.TotalHours, 0.001)
	require.Len(t, summary.ByCampaign, 2)

	// Completed campaigns stay out of the open list.
	require.Len(t, summary.OpenCampaigns, 1)
	require.Equal(t, "Spring Launch", summary.OpenCampaigns[0].Name)

	require.Len(t, summary.Team, 2)
}

func TestClientSummaryTeamSkipsInactiveUsers(t *testing.T) {
	f := newFixture(t)
	ownerID := f.seedUser(t, "olive", authdomain.RoleOwner)
	goneID := f.seedUser(t, "gone", authdomain.RoleContributor)
	require.NoError(t, f.db.Model(&authdomain.User{}).
		Where("id = ?", goneID).Update("status", authdomain.StatusInactive).Error)
	f.seedEntry(t, ownerID, f.campaignA1, f.clientA, 2)
	f.seedEntry(t, goneID, f.campaignA1, f.clientA, 6)

	owner := authdomain.Principal{ID: ownerID, Name: "olive", Role: authdomain.RoleOwner}
	summary, err := f.svc.ClientSummary(context.Background(), owner, f.clientA)
	require.NoError(t, err)

	require.InDelta(t, 8, summary.TotalHours, 0.001)
	require.Len(t, summary.Team, 1)
	require.Equal(t, "olive", summary.Team[0].UserName)
}

func TestClientSummaryPortalOwnClientOnly(t *testing.T) {
	f := newFixture(t)
	portal := authdomain.Principal{
		ID: f.node.Generate(), Name: "portal", Role: authdomain.RoleClient, ClientID: &f.clientB,
	}

	summary, err := f.svc.ClientSummary(context.Background(), portal, f.clientB)
	require.NoError(t, err)
	require.Equal(t, "Globex", summary.ClientName)

	_, err = f.svc.ClientSummary(context.Background(), portal, f.clientA)
	require.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestClientSummaryContributorForbidden(t *testing.T) {
	f := newFixture(t)
	carl := authdomain.Principal{ID: f.node.Generate(), Name: "carl", Role: authdomain.RoleContributor}

	_, err := f.svc.ClientSummary(context.Background(), carl, f.clientA)
	require.ErrorIs(t, err, authz.ErrForbidden)
}

func TestClientSummaryUnknownClient(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: f.node.Generate(), Name: "olive", Role: authdomain.RoleOwner}

	_, err := f.svc.ClientSummary(context.Background(), owner, f.node.Generate())
	require.ErrorIs(t, err, clientdomain.ErrNotFound)
}
