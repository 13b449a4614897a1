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
	"github.com/agencydesk/agencydesk/internal/campaign/domain"
	"github.com/agencydesk/agencydesk/internal/campaign/repository"
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	changelogrepo "github.com/agencydesk/agencydesk/internal/changelog/repository"
	changelogservice "github.com/agencydesk/agencydesk/internal/changelog/service"
	clientdomain "github.com/agencydesk/agencydesk/internal/client/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	notifrepo "github.com/agencydesk/agencydesk/internal/notification/repository"
	notifservice "github.com/agencydesk/agencydesk/internal/notification/service"
	websitedomain "github.com/agencydesk/agencydesk/internal/website/domain"
	"github.com/agencydesk/agencydesk/pkg/db"
)

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clientID snowflake.ID
	website  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&domain.Campaign{},
		&domain.Contributor{},
		&authdomain.User{},
		&clientdomain.Client{},
		&clientdomain.ClientManager{},
		&websitedomain.Website{},
		&changelogdomain.Entry{},
		&notifdomain.Notification{},
	))
	require.NoError(t, dbConn.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_campaign_contributors ON campaign_contributors(campaign_id, user_id)`,
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	notifications := notifservice.New(notifservice.Params{
		DB: dbConn, Log: zap.NewNop(), GenID: node, Repo: notifrepo.Provide(),
	})
	changeLogs := changelogservice.New(changelogservice.Params{
		DB: dbConn, Log: zap.NewNop(), GenID: node, Repo: changelogrepo.Provide(),
		NotifSvc: notifications, NotifRepo: notifrepo.Provide(),
	})
	svc := New(Params{
		DB: dbConn, Log: zap.NewNop(), GenID: node, Repo: repository.Provide(),
		ChangeLogSvc: changeLogs, NotifSvc: notifications, NotifRepo: notifrepo.Provide(),
	})

	f := &fixture{svc: svc, db: dbConn, node: node}
	now := time.Now().UTC()
	f.clientID = node.Generate()
	require.NoError(t, dbConn.Create(&clientdomain.Client{
		ID: f.clientID, Name: "Acme", Slug: "acme", Status: "active", CreatedAt: now, UpdatedAt: now,
	}).Error)
	f.website = node.Generate()
	require.NoError(t, dbConn.Create(&websitedomain.Website{
		ID: f.website, AccountID: node.Generate(), ClientID: f.clientID,
		Name: "acme.com", Status: websitedomain.StatusActive, CreatedAt: now, UpdatedAt: now,
	}).Error)
	return f
}

func (f *fixture) seedUser(t *testing.T, role, status string) authdomain.User {
	t.Helper()

	now := time.Now().UTC()
	user := authdomain.User{
		ID:        f.node.Generate(),
		Name:      role + " user",
		Email:     f.node.Generate().String() + "@example.com",
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) createCampaign(t *testing.T, actor authdomain.Principal) domain.Campaign {
	t.Helper()

	campaign, err := f.svc.Create(context.Background(), actor, domain.CreateCampaignRequest{
		WebsiteID: f.website,
		Name:      "Spring Launch",
	})
	require.NoError(t, err)
	return campaign
}

func (f *fixture) notificationCountFor(t *testing.T, userID snowflake.ID, notifType string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.db.Model(&notifdomain.Notification{}).
		Where("user_id = ? AND type = ?", userID, notifType).
		Count(&count).Error)
	return count
}

func TestCreateResolvesClientFromWebsite(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}

	campaign := f.createCampaign(t, owner)
	require.Equal(t, f.clientID, campaign.ClientID)
	require.Equal(t, domain.StatusActive, campaign.Status)
}

func TestCreateRecordsSystemEntry(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}

	campaign := f.createCampaign(t, owner)

	var entries []changelogdomain.Entry
	require.NoError(t, f.db.Where("entity_id = ?", campaign.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, changelogdomain.EntrySystem, entries[0].EntryType)
	require.Equal(t, "Campaign 'Spring Launch' was created", entries[0].Title)
	require.Contains(t, entries[0].Body, "Unknown channel")
}

func TestCreateUnknownWebsite(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}

	_, err := f.svc.Create(context.Background(), owner, domain.CreateCampaignRequest{
		WebsiteID: f.node.Generate(),
		Name:      "Orphan",
	})
	require.ErrorIs(t, err, domain.ErrInvalidWebsite)
}

func TestChangeStatusRecordsSystemEntry(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Olive", Role: authdomain.RoleOwner}
	ctx := context.Background()

	campaign := f.createCampaign(t, owner)
	updated, err := f.svc.ChangeStatus(ctx, owner, campaign.ID, domain.StatusPaused)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaused, updated.Status)

	var entries []changelogdomain.Entry
	require.NoError(t, f.db.
		Where("entity_id = ? AND title = ?", campaign.ID, "Campaign status changed").
		Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, changelogdomain.EntrySystem, entries[0].EntryType)
	require.Nil(t, entries[0].UserID)
	require.Equal(t, f.clientID, entries[0].ClientID)
	require.Contains(t, entries[0].Body, "from active to paused")
	require.Contains(t, entries[0].Body, "Olive")
}

func TestChangeStatusNotifiesEveryoneAttached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ownerUser := f.seedUser(t, authdomain.RoleOwner, authdomain.StatusActive)
	managerUser := f.seedUser(t, authdomain.RoleManager, authdomain.StatusActive)
	contributorUser := f.seedUser(t, authdomain.RoleContributor, authdomain.StatusActive)
	owner := authdomain.Principal{ID: ownerUser.ID, Name: ownerUser.Name, Role: authdomain.RoleOwner}

	require.NoError(t, f.db.Create(&clientdomain.ClientManager{
		ID: f.node.Generate(), ClientID: f.clientID, UserID: managerUser.ID,
	}).Error)

	campaign := f.createCampaign(t, owner)
	require.NoError(t, f.svc.AssignContributor(ctx, owner, campaign.ID, contributorUser.ID))

	_, err := f.svc.ChangeStatus(ctx, owner, campaign.ID, domain.StatusCompleted)
	require.NoError(t, err)

	require.EqualValues(t, 1, f.notificationCountFor(t, contributorUser.ID, notifdomain.TypeCampaignStatus))
	require.EqualValues(t, 1, f.notificationCountFor(t, managerUser.ID, notifdomain.TypeCampaignStatus))
	// The acting owner is notified too; status changes are broadcast to
	// everyone attached, the actor included.
	require.EqualValues(t, 1, f.notificationCountFor(t, ownerUser.ID, notifdomain.TypeCampaignStatus))
}

func TestChangeStatusSameStatusNoOp(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}
	ctx := context.Background()

	campaign := f.createCampaign(t, owner)
	_, err := f.svc.ChangeStatus(ctx, owner, campaign.ID, domain.StatusActive)
	require.NoError(t, err)

	var entries int64
	require.NoError(t, f.db.Model(&changelogdomain.Entry{}).
		Where("title = ?", "Campaign status changed").
		Count(&entries).Error)
	require.Zero(t, entries)

	var notifications int64
	require.NoError(t, f.db.Model(&notifdomain.Notification{}).Count(&notifications).Error)
	require.Zero(t, notifications)
}

func TestChangeStatusInvalid(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}

	campaign := f.createCampaign(t, owner)
	_, err := f.svc.ChangeStatus(context.Background(), owner, campaign.ID, "archived")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAssignContributorRequiresContributorRole(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}
	ctx := context.Background()

	campaign := f.createCampaign(t, owner)
	portalUser := f.seedUser(t, authdomain.RoleClient, authdomain.StatusActive)
	managerUser := f.seedUser(t, authdomain.RoleManager, authdomain.StatusActive)

	err := f.svc.AssignContributor(ctx, owner, campaign.ID, portalUser.ID)
	require.ErrorIs(t, err, domain.ErrNotContributor)

	// Managers oversee campaigns; they are never assigned as contributors.
	err = f.svc.AssignContributor(ctx, owner, campaign.ID, managerUser.ID)
	require.ErrorIs(t, err, domain.ErrNotContributor)
}

func TestAssignContributorRecordsEntryAndNotifies(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}
	ctx := context.Background()

	campaign := f.createCampaign(t, owner)
	contributorUser := f.seedUser(t, authdomain.RoleContributor, authdomain.StatusActive)

	require.NoError(t, f.svc.AssignContributor(ctx, owner, campaign.ID, contributorUser.ID))

	var entries []changelogdomain.Entry
	require.NoError(t, f.db.
		Where("entity_id = ? AND title LIKE ?", campaign.ID, "%was assigned to this campaign").
		Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, changelogdomain.EntrySystem, entries[0].EntryType)
	require.Contains(t, entries[0].Body, contributorUser.Name)

	require.EqualValues(t, 1,
		f.notificationCountFor(t, contributorUser.ID, notifdomain.TypeContributorAssigned))
}

func TestAssignContributorIdempotent(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}
	ctx := context.Background()

	campaign := f.createCampaign(t, owner)
	contributorUser := f.seedUser(t, authdomain.RoleContributor, authdomain.StatusActive)

	require.NoError(t, f.svc.AssignContributor(ctx, owner, campaign.ID, contributorUser.ID))
	require.NoError(t, f.svc.AssignContributor(ctx, owner, campaign.ID, contributorUser.ID))

	var count int64
	require.NoError(t, f.db.Model(&domain.Contributor{}).
		Where("campaign_id = ?", campaign.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestContributorCannotSeeUnassignedCampaign(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}
	ctx := context.Background()

	campaign := f.createCampaign(t, owner)
	outsider := authdomain.Principal{ID: f.node.Generate(), Role: authdomain.RoleContributor}

	_, err := f.svc.Get(ctx, outsider, campaign.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
