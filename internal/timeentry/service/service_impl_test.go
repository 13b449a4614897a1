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
	campaigndomain "github.com/agencydesk/agencydesk/internal/campaign/domain"
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	changelogrepo "github.com/agencydesk/agencydesk/internal/changelog/repository"
	changelogservice "github.com/agencydesk/agencydesk/internal/changelog/service"
	clientdomain "github.com/agencydesk/agencydesk/internal/client/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	notifrepo "github.com/agencydesk/agencydesk/internal/notification/repository"
	notifservice "github.com/agencydesk/agencydesk/internal/notification/service"
	"github.com/agencydesk/agencydesk/internal/timeentry/domain"
	"github.com/agencydesk/agencydesk/internal/timeentry/repository"
	"github.com/agencydesk/agencydesk/pkg/db"
)

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	node      *snowflake.Node
	clientID  snowflake.ID
	websiteID snowflake.ID
	campaign  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&domain.TimeEntry{},
		&campaigndomain.Campaign{},
		&campaigndomain.Contributor{},
		&authdomain.User{},
		&clientdomain.Client{},
		&clientdomain.ClientManager{},
		&notifdomain.Notification{},
		&changelogdomain.Entry{},
	))

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
		NotifSvc: notifications, NotifRepo: notifrepo.Provide(),
		ChangeLogSvc: changeLogs,
	})

	f := &fixture{svc: svc, db: dbConn, node: node}
	now := time.Now().UTC()
	f.clientID = node.Generate()
	f.websiteID = node.Generate()
	f.campaign = node.Generate()
	require.NoError(t, dbConn.Create(&clientdomain.Client{
		ID: f.clientID, Name: "Acme", Slug: "acme", Status: "active",
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, dbConn.Create(&campaigndomain.Campaign{
		ID: f.campaign, WebsiteID: f.websiteID, ClientID: f.clientID,
		Name: "Spring Launch", Status: campaigndomain.StatusActive,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
	return f
}

func (f *fixture) assignContributor(t *testing.T, userID snowflake.ID) {
	t.Helper()

	require.NoError(t, f.db.Create(&campaigndomain.Contributor{
		ID: f.node.Generate(), CampaignID: f.campaign, UserID: userID,
	}).Error)
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func validRequest(f *fixture) domain.CreateEntryRequest {
	return domain.CreateEntryRequest{
		CampaignID:  f.campaign,
		Date:        today(),
		Hours:       1.5,
		Description: "keyword research and reporting",
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}
	ctx := context.Background()

	req := validRequest(f)
	req.Hours = 0.1
	_, err := f.svc.Create(ctx, owner, req)
	require.ErrorIs(t, err, domain.ErrInvalidHours)

	req = validRequest(f)
	req.Hours = 24.5
	_, err = f.svc.Create(ctx, owner, req)
	require.ErrorIs(t, err, domain.ErrInvalidHours)

	req = validRequest(f)
	req.Description = "too short"
	_, err = f.svc.Create(ctx, owner, req)
	require.ErrorIs(t, err, domain.ErrDescriptionTooShort)

	req = validRequest(f)
	req.Date = "not-a-date"
	_, err = f.svc.Create(ctx, owner, req)
	require.ErrorIs(t, err, domain.ErrInvalidDate)

	req = validRequest(f)
	req.Date = time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	_, err = f.svc.Create(ctx, owner, req)
	require.ErrorIs(t, err, domain.ErrFutureDate)
}

func TestCreateDenormalizesCampaignFields(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}

	entry, err := f.svc.Create(context.Background(), owner, validRequest(f))
	require.NoError(t, err)
	require.Equal(t, f.clientID, entry.ClientID)
	require.Equal(t, f.websiteID, entry.WebsiteID)
	require.Equal(t, owner.ID, entry.UserID)
}

func TestCreateCompletedCampaignBlockedForAllRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&campaigndomain.Campaign{}).
		Where("id = ?", f.campaign).
		Update("status", campaigndomain.StatusCompleted).Error)

	// The owner gets no exemption.
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}
	_, err := f.svc.Create(ctx, owner, validRequest(f))
	require.ErrorIs(t, err, domain.ErrCampaignCompleted)

	contributorID := f.node.Generate()
	f.assignContributor(t, contributorID)
	contributor := authdomain.Principal{ID: contributorID, Role: authdomain.RoleContributor}
	_, err = f.svc.Create(ctx, contributor, validRequest(f))
	require.ErrorIs(t, err, domain.ErrCampaignCompleted)
}

func TestCreateContributorNeedsAssignment(t *testing.T) {
	f := newFixture(t)

	outsider := authdomain.Principal{ID: f.node.Generate(), Role: authdomain.RoleContributor}
	_, err := f.svc.Create(context.Background(), outsider, validRequest(f))
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestCreateNotifiesManagersAndOwnersNotAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	ownerUser := authdomain.User{
		ID: f.node.Generate(), Name: "Olive", Email: "olive@example.com",
		Role: authdomain.RoleOwner, Status: authdomain.StatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(&ownerUser).Error)

	managerID := f.node.Generate()
	require.NoError(t, f.db.Create(&clientdomain.ClientManager{
		ID: f.node.Generate(), ClientID: f.clientID, UserID: managerID,
	}).Error)

	contributorID := f.node.Generate()
	f.assignContributor(t, contributorID)
	contributor := authdomain.Principal{ID: contributorID, Name: "Carol", Role: authdomain.RoleContributor}

	_, err := f.svc.Create(ctx, contributor, validRequest(f))
	require.NoError(t, err)

	counts := map[snowflake.ID]int64{}
	for _, id := range []snowflake.ID{ownerUser.ID, managerID, contributorID} {
		var count int64
		require.NoError(t, f.db.Model(&notifdomain.Notification{}).
			Where("user_id = ?", id).Count(&count).Error)
		counts[id] = count
	}
	require.EqualValues(t, 1, counts[ownerUser.ID])
	require.EqualValues(t, 1, counts[managerID])
	require.Zero(t, counts[contributorID])
}

func TestManagerLogsHoursOnManagedClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	managerID := f.node.Generate()
	require.NoError(t, f.db.Create(&clientdomain.ClientManager{
		ID: f.node.Generate(), ClientID: f.clientID, UserID: managerID,
	}).Error)
	manager := authdomain.Principal{ID: managerID, Name: "Mia", Role: authdomain.RoleManager}

	entry, err := f.svc.Create(ctx, manager, validRequest(f))
	require.NoError(t, err)
	require.Equal(t, managerID, entry.UserID)

	// An unassigned manager never reaches the campaign.
	stranger := authdomain.Principal{ID: f.node.Generate(), Role: authdomain.RoleManager}
	_, err = f.svc.Create(ctx, stranger, validRequest(f))
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestCreateRecordsHoursLoggedEntry(t *testing.T) {
	f := newFixture(t)
	owner := authdomain.Principal{ID: 1, Name: "Olive", Role: authdomain.RoleOwner}

	req := validRequest(f)
	req.Hours = 2.5
	_, err := f.svc.Create(context.Background(), owner, req)
	require.NoError(t, err)

	var logged changelogdomain.Entry
	require.NoError(t, f.db.
		Where("entity_type = ? AND entity_id = ?", changelogdomain.EntityCampaign, f.campaign).
		First(&logged).Error)
	require.Equal(t, changelogdomain.EntrySystem, logged.EntryType)
	require.Equal(t, "2.5 hours logged by Olive", logged.Title)
	require.Contains(t, logged.Body, "keyword research and reporting")
	require.Nil(t, logged.UserID)
}

func TestContributorEditsOwnEntrySameDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	contributorID := f.node.Generate()
	f.assignContributor(t, contributorID)
	contributor := authdomain.Principal{ID: contributorID, Role: authdomain.RoleContributor}

	entry, err := f.svc.Create(ctx, contributor, validRequest(f))
	require.NoError(t, err)

	hours := 3.25
	updated, err := f.svc.Update(ctx, contributor, entry.ID, domain.UpdateEntryRequest{Hours: &hours})
	require.NoError(t, err)
	require.Equal(t, hours, updated.Hours)
}

func TestContributorCannotEditOthersEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	authorID := f.node.Generate()
	f.assignContributor(t, authorID)
	author := authdomain.Principal{ID: authorID, Role: authdomain.RoleContributor}
	entry, err := f.svc.Create(ctx, author, validRequest(f))
	require.NoError(t, err)

	// A manager on the client can see the entry but not change it.
	managerID := f.node.Generate()
	require.NoError(t, f.db.Create(&clientdomain.ClientManager{
		ID: f.node.Generate(), ClientID: f.clientID, UserID: managerID,
	}).Error)
	manager := authdomain.Principal{ID: managerID, Role: authdomain.RoleManager}

	hours := 5.0
	_, err = f.svc.Update(ctx, manager, entry.ID, domain.UpdateEntryRequest{Hours: &hours})
	require.ErrorIs(t, err, domain.ErrNotEditable)
}

func TestEditWindowClosesAtMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	contributorID := f.node.Generate()
	f.assignContributor(t, contributorID)
	contributor := authdomain.Principal{ID: contributorID, Role: authdomain.RoleContributor}

	stale := time.Now().UTC().AddDate(0, 0, -2)
	entry := domain.TimeEntry{
		ID: f.node.Generate(), UserID: contributorID, CampaignID: f.campaign,
		ClientID: f.clientID, WebsiteID: f.websiteID, Date: stale,
		Hours: 2, Description: "logged two days ago",
		CreatedAt: stale, UpdatedAt: stale,
	}
	require.NoError(t, f.db.Create(&entry).Error)

	hours := 4.0
	_, err := f.svc.Update(ctx, contributor, entry.ID, domain.UpdateEntryRequest{Hours: &hours})
	require.ErrorIs(t, err, domain.ErrEditWindowClosed)
}

func TestEditWindowTracksEntryDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	contributorID := f.node.Generate()
	f.assignContributor(t, contributorID)
	contributor := authdomain.Principal{ID: contributorID, Role: authdomain.RoleContributor}

	// Backdating is allowed on create, but the window follows the entry's
	// date, so a backdated entry is frozen the moment it is written.
	req := validRequest(f)
	req.Date = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	entry, err := f.svc.Create(ctx, contributor, req)
	require.NoError(t, err)

	hours := 4.0
	_, err = f.svc.Update(ctx, contributor, entry.ID, domain.UpdateEntryRequest{Hours: &hours})
	require.ErrorIs(t, err, domain.ErrEditWindowClosed)
}

func TestDeleteReservedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	contributorID := f.node.Generate()
	f.assignContributor(t, contributorID)
	contributor := authdomain.Principal{ID: contributorID, Role: authdomain.RoleContributor}

	// Same-day author, so the edit window is still open. Delete is refused
	// on role alone.
	entry, err := f.svc.Create(ctx, contributor, validRequest(f))
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.Delete(ctx, contributor, entry.ID), domain.ErrNotEditable)

	managerID := f.node.Generate()
	require.NoError(t, f.db.Create(&clientdomain.ClientManager{
		ID: f.node.Generate(), ClientID: f.clientID, UserID: managerID,
	}).Error)
	manager := authdomain.Principal{ID: managerID, Role: authdomain.RoleManager}
	require.ErrorIs(t, f.svc.Delete(ctx, manager, entry.ID), domain.ErrNotEditable)
}

func TestOwnerEditsAndDeletesAnytime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := authdomain.Principal{ID: 1, Name: "Owner", Role: authdomain.RoleOwner}

	stale := time.Now().UTC().AddDate(0, 0, -30)
	entry := domain.TimeEntry{
		ID: f.node.Generate(), UserID: f.node.Generate(), CampaignID: f.campaign,
		ClientID: f.clientID, WebsiteID: f.websiteID, Date: stale,
		Hours: 2, Description: "logged a month ago",
		CreatedAt: stale, UpdatedAt: stale,
	}
	require.NoError(t, f.db.Create(&entry).Error)

	hours := 6.5
	updated, err := f.svc.Update(ctx, owner, entry.ID, domain.UpdateEntryRequest{Hours: &hours})
	require.NoError(t, err)
	require.Equal(t, hours, updated.Hours)

	require.NoError(t, f.svc.Delete(ctx, owner, entry.ID))
	_, err = f.svc.Get(ctx, owner, entry.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSumsVisibleHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// List joins the author row, so the actor needs a users record.
	ownerUser := authdomain.User{
		ID: f.node.Generate(), Name: "Olive", Email: "olive@example.com",
		Role: authdomain.RoleOwner, Status: authdomain.StatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(&ownerUser).Error)
	owner := authdomain.Principal{ID: ownerUser.ID, Name: ownerUser.Name, Role: authdomain.RoleOwner}

	first := validRequest(f)
	first.Hours = 2
	_, err := f.svc.Create(ctx, owner, first)
	require.NoError(t, err)

	second := validRequest(f)
	second.Hours = 3.5
	_, err = f.svc.Create(ctx, owner, second)
	require.NoError(t, err)

	resp, err := f.svc.List(ctx, owner, domain.ListEntriesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	require.InDelta(t, 5.5, resp.TotalHours, 0.001)
	require.False(t, resp.HasMore)
}
