package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/auth/password"
	"github.com/agencydesk/agencydesk/internal/auth/repository"
	"github.com/agencydesk/agencydesk/internal/auth/token"
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/providers/email"
	"github.com/agencydesk/agencydesk/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, repository.Repository) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	cfg := config.Config{
		JWTSecret:   "test-secret",
		FrontendURL: "http://localhost:3000",
	}
	repo := repository.NewRepository(dbConn)
	svc := NewService(Params{
		Cfg:    cfg,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repo,
		Signer: token.NewSigner(cfg.JWTSecret),
		Mailer: &email.NoOpProvider{},
	})
	return svc, repo
}

func seedUser(t *testing.T, repo repository.Repository, user domain.User) domain.User {
	t.Helper()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
		user.UpdatedAt = user.CreatedAt
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func hashed(t *testing.T, plain string) *string {
	t.Helper()

	h, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &h
}

func TestInviteAndAcceptInvite(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	actor := domain.Principal{ID: 1, Name: "Owner", Role: domain.RoleOwner}
	invite, err := svc.Invite(ctx, actor, domain.InviteRequest{
		Name:  "Carol",
		Email: "Carol@Example.com",
		Role:  domain.RoleContributor,
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if invite.User.Status != domain.StatusInvited {
		t.Fatalf("expected invited status, got %s", invite.User.Status)
	}
	if invite.User.Email != "carol@example.com" {
		t.Fatalf("expected normalized email, got %s", invite.User.Email)
	}
	if invite.InviteToken == "" {
		t.Fatal("expected invite token")
	}

	result, err := svc.AcceptInvite(ctx, domain.RedeemRequest{
		Token:    invite.InviteToken,
		Password: "chosen-password",
	})
	if err != nil {
		t.Fatalf("accept invite: %v", err)
	}
	if result.User.Status != domain.StatusActive {
		t.Fatalf("expected active after accept, got %s", result.User.Status)
	}

	// Token is single use.
	if _, err := svc.AcceptInvite(ctx, domain.RedeemRequest{
		Token:    invite.InviteToken,
		Password: "chosen-password",
	}); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid on reuse, got %v", err)
	}

	login, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "carol@example.com",
		Password: "chosen-password",
	})
	if err != nil {
		t.Fatalf("login after accept: %v", err)
	}

	principal, err := svc.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.Role != domain.RoleContributor {
		t.Fatalf("expected contributor principal, got %s", principal.Role)
	}
}

func TestInviteDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	actor := domain.Principal{ID: 1, Name: "Owner", Role: domain.RoleOwner}

	if _, err := svc.Invite(ctx, actor, domain.InviteRequest{
		Name: "Dan", Email: "dan@example.com", Role: domain.RoleManager,
	}); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	if _, err := svc.Invite(ctx, actor, domain.InviteRequest{
		Name: "Dan Again", Email: "DAN@example.com", Role: domain.RoleManager,
	}); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAcceptInviteExpired(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	plaintext, hash, err := newToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	expired := time.Now().UTC().Add(-time.Hour)
	seedUser(t, repo, domain.User{
		ID:              snowflake.ID(10),
		Name:            "Eve",
		Email:           "eve@example.com",
		Role:            domain.RoleContributor,
		Status:          domain.StatusInvited,
		InviteTokenHash: &hash,
		InviteExpires:   &expired,
	})

	if _, err := svc.AcceptInvite(ctx, domain.RedeemRequest{
		Token:    plaintext,
		Password: "long-enough",
	}); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAcceptInviteShortPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AcceptInvite(context.Background(), domain.RedeemRequest{
		Token:    "whatever",
		Password: "short",
	})
	if err != domain.ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := newTestService(t)

	seedUser(t, repo, domain.User{
		ID:           snowflake.ID(11),
		Name:         "Alice",
		Email:        "alice@example.com",
		Role:         domain.RoleOwner,
		Status:       domain.StatusActive,
		PasswordHash: hashed(t, "correct-password"),
	})

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginGoogleOnlyAccount(t *testing.T) {
	svc, repo := newTestService(t)

	googleID := "google-sub-1"
	seedUser(t, repo, domain.User{
		ID:       snowflake.ID(12),
		Name:     "Bob",
		Email:    "bob@example.com",
		Role:     domain.RoleManager,
		Status:   domain.StatusActive,
		GoogleID: &googleID,
	})

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "bob@example.com",
		Password: "anything-at-all",
	})
	if err != domain.ErrGoogleOnly {
		t.Fatalf("expected ErrGoogleOnly, got %v", err)
	}
}

func TestLoginActivatesInvitedUser(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	seedUser(t, repo, domain.User{
		ID:           snowflake.ID(13),
		Name:         "Frank",
		Email:        "frank@example.com",
		Role:         domain.RoleManager,
		Status:       domain.StatusInvited,
		PasswordHash: hashed(t, "frank-password"),
	})

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "frank@example.com",
		Password: "frank-password",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.User.Status != domain.StatusActive {
		t.Fatalf("expected first login to activate, got %s", result.User.Status)
	}

	stored, err := repo.GetByEmail(ctx, "frank@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if stored.Status != domain.StatusActive {
		t.Fatalf("expected stored status active, got %s", stored.Status)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo := newTestService(t)

	seedUser(t, repo, domain.User{
		ID:           snowflake.ID(14),
		Name:         "Grace",
		Email:        "grace@example.com",
		Role:         domain.RoleContributor,
		Status:       domain.StatusInactive,
		PasswordHash: hashed(t, "grace-password"),
	})

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "grace@example.com",
		Password: "grace-password",
	})
	if err != domain.ErrAccountInactive {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestAuthenticateRejectsDeactivated(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, repo, domain.User{
		ID:           snowflake.ID(15),
		Name:         "Heidi",
		Email:        "heidi@example.com",
		Role:         domain.RoleManager,
		Status:       domain.StatusActive,
		PasswordHash: hashed(t, "heidi-password"),
	})

	login, err := svc.Login(ctx, domain.LoginRequest{Email: user.Email, Password: "heidi-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Deactivation takes effect on the next request, not at token expiry.
	if err := repo.SetStatus(ctx, user.ID, domain.StatusInactive); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if _, err := svc.Authenticate(ctx, login.Token); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, repo, domain.User{
		ID:           snowflake.ID(16),
		Name:         "Ivan",
		Email:        "ivan@example.com",
		Role:         domain.RoleOwner,
		Status:       domain.StatusActive,
		PasswordHash: hashed(t, "old-password"),
	})

	plaintext, hash, err := newToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if err := repo.SetResetToken(ctx, user.ID, hash, time.Now().UTC().Add(resetTTL)); err != nil {
		t.Fatalf("set reset token: %v", err)
	}

	if err := svc.ResetPassword(ctx, domain.RedeemRequest{
		Token:    plaintext,
		Password: "new-password",
	}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	if _, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "ivan@example.com",
		Password: "new-password",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "ivan@example.com",
		Password: "old-password",
	}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected old password rejected, got %v", err)
	}
}

func TestResolveGoogleNoInvitedAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ResolveGoogle(context.Background(), "google-sub-2", "stranger@example.com", "Stranger")
	if err != domain.ErrNoInvitedAccount {
		t.Fatalf("expected ErrNoInvitedAccount, got %v", err)
	}
}

func TestResolveGoogleLinksStaffByEmail(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user := seedUser(t, repo, domain.User{
		ID:     snowflake.ID(17),
		Name:   "Judy",
		Email:  "judy@example.com",
		Role:   domain.RoleManager,
		Status: domain.StatusActive,
	})

	result, err := svc.ResolveGoogle(ctx, "google-sub-3", "judy@example.com", "Judy")
	if err != nil {
		t.Fatalf("resolve google: %v", err)
	}
	if result.User.ID != user.ID {
		t.Fatalf("expected existing account, got %s", result.User.ID)
	}

	linked, err := repo.GetByGoogleID(ctx, "google-sub-3")
	if err != nil {
		t.Fatalf("get by google id: %v", err)
	}
	if linked == nil || linked.ID != user.ID {
		t.Fatal("expected google id linked to the staff account")
	}
}
