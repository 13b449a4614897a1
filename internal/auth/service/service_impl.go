package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/auth/password"
	"github.com/agencydesk/agencydesk/internal/auth/repository"
	"github.com/agencydesk/agencydesk/internal/auth/token"
	"github.com/agencydesk/agencydesk/internal/config"
	"github.com/agencydesk/agencydesk/internal/providers/email"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	inviteTTL = 72 * time.Hour
	resetTTL  = time.Hour

	minPasswordLen = 8
	tokenBytes     = 32
)

type Params struct {
	fx.In

	Cfg    config.Config
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   repository.Repository
	Signer *token.Signer
	Mailer email.Provider
}

type service struct {
	cfg    config.Config
	log    *zap.Logger
	genID  *snowflake.Node
	repo   repository.Repository
	signer *token.Signer
	mailer email.Provider
}

func NewService(p Params) domain.Service {
	return &service{
		cfg:    p.Cfg,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		signer: p.Signer,
		mailer: p.Mailer,
	}
}

// Authenticate validates the bearer token, then re-reads the subject row so a
// role change or deactivation takes effect immediately, not at token expiry.
func (s *service) Authenticate(ctx context.Context, bearer string) (*domain.Principal, error) {
	claims, err := s.signer.Parse(bearer)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	id, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status == domain.StatusInactive {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.Principal{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Status:   user.Status,
		ClientID: user.ClientID,
	}, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status == domain.StatusInactive {
		return nil, domain.ErrAccountInactive
	}
	if user.PasswordHash == nil {
		return nil, domain.ErrGoogleOnly
	}
	if !password.Verify(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	// First password login activates an invited account.
	if user.Status == domain.StatusInvited {
		if err := s.repo.SetStatus(ctx, user.ID, domain.StatusActive); err != nil {
			return nil, err
		}
		user.Status = domain.StatusActive
	}

	signed, err := s.signer.Sign(*user)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResult{Token: signed, User: *user}, nil
}

func (s *service) Invite(ctx context.Context, actor domain.Principal, req domain.InviteRequest) (*domain.InviteResult, error) {
	name := strings.TrimSpace(req.Name)
	addr := normalizeEmail(req.Email)
	if name == "" || addr == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	existing, err := s.repo.GetByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	plaintext, hash, err := newToken()
	if err != nil {
		return nil, err
	}
	expires := time.Now().UTC().Add(inviteTTL)

	user := domain.User{
		ID:              s.genID.Generate(),
		Name:            name,
		Email:           addr,
		Role:            req.Role,
		Status:          domain.StatusInvited,
		ClientID:        req.ClientID,
		InviteTokenHash: &hash,
		InviteExpires:   &expires,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/accept-invite?token=%s", s.cfg.FrontendURL, plaintext)
	s.sendInviteEmail(ctx, addr, name, req.Role, link)

	return &domain.InviteResult{User: user, InviteLink: link, InviteToken: plaintext}, nil
}

func (s *service) AcceptInvite(ctx context.Context, req domain.RedeemRequest) (*domain.LoginResult, error) {
	if len(req.Password) < minPasswordLen {
		return nil, domain.ErrPasswordTooShort
	}

	user, err := s.repo.GetByInviteHash(ctx, hashToken(req.Token), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrTokenInvalid
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ActivateWithPassword(ctx, user.ID, hashed, true); err != nil {
		return nil, err
	}

	user.Status = domain.StatusActive
	user.PasswordHash = &hashed
	user.InviteTokenHash = nil
	user.InviteExpires = nil

	signed, err := s.signer.Sign(*user)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResult{Token: signed, User: *user}, nil
}

// ForgotPassword always succeeds from the caller's point of view so email
// addresses cannot be enumerated.
func (s *service) ForgotPassword(ctx context.Context, rawEmail string) error {
	addr := normalizeEmail(rawEmail)
	if addr == "" {
		return nil
	}

	user, err := s.repo.GetByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	plaintext, hash, err := newToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, user.ID, hash, time.Now().UTC().Add(resetTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, plaintext)
	s.sendResetEmail(ctx, addr, user.Name, link)
	return nil
}

func (s *service) ResetPassword(ctx context.Context, req domain.RedeemRequest) error {
	if len(req.Password) < minPasswordLen {
		return domain.ErrPasswordTooShort
	}

	user, err := s.repo.GetByResetHash(ctx, hashToken(req.Token), time.Now().UTC())
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrTokenInvalid
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return err
	}
	return s.repo.ActivateWithPassword(ctx, user.ID, hashed, false)
}

func (s *service) ResolveGoogle(ctx context.Context, googleID, rawEmail, name string) (*domain.LoginResult, error) {
	if googleID == "" || rawEmail == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.repo.GetByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Only staff accounts may attach a Google identity; the invite must
		// already exist.
		user, err = s.repo.GetStaffByEmail(ctx, normalizeEmail(rawEmail))
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, domain.ErrNoInvitedAccount
		}
		if err := s.repo.LinkGoogle(ctx, user.ID, googleID); err != nil {
			return nil, err
		}
		user.Status = domain.StatusActive
	}

	if user.Status == domain.StatusInactive {
		return nil, domain.ErrAccountInactive
	}

	signed, err := s.signer.Sign(*user)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResult{Token: signed, User: *user}, nil
}

func (s *service) Me(ctx context.Context, userID snowflake.ID) (*domain.MeResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	resp := &domain.MeResponse{User: *user}
	if user.ClientID != nil {
		clientName, err := s.repo.ClientName(ctx, *user.ClientID)
		if err == nil {
			resp.ClientName = clientName
		}
	}
	return resp, nil
}

func (s *service) sendInviteEmail(ctx context.Context, to, name, role, link string) {
	body := fmt.Sprintf(`<h2>Welcome</h2>
<p>Hi %s,</p>
<p>You've been invited to join the agency as a <strong>%s</strong>.</p>
<p><a href="%s">Accept Invitation</a></p>
<p>This link expires in 72 hours.</p>`, name, role, link)

	if err := s.mailer.Send(ctx, []string{to}, "You've been invited to AgencyDesk", body); err != nil {
		s.log.Warn("failed to send invite email", zap.String("email", to), zap.Error(err))
	}
}

func (s *service) sendResetEmail(ctx context.Context, to, name, link string) {
	body := fmt.Sprintf(`<h2>Password Reset Request</h2>
<p>Hi %s,</p>
<p>Click the link below to choose a new password:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link expires in 1 hour.</p>`, name, link)

	if err := s.mailer.Send(ctx, []string{to}, "Reset your AgencyDesk password", body); err != nil {
		s.log.Warn("failed to send reset email", zap.String("email", to), zap.Error(err))
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// newToken returns a fresh random token and its sha256 hex digest. Only the
// digest is ever persisted.
func newToken() (plaintext string, digest string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, hashToken(plaintext), nil
}

func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
