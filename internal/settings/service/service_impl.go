package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/settings/domain"
)

const defaultAgencyName = "My Agency"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		genID: p.GenID,
	}
}

func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	var settings domain.Settings
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, agency_name, logo_url, updated_at FROM agency_settings LIMIT 1`,
	).Scan(&settings).Error
	if err != nil {
		return domain.Settings{}, err
	}
	if settings.ID != 0 {
		return settings, nil
	}

	settings = domain.Settings{
		ID:         s.genID.Generate(),
		AgencyName: defaultAgencyName,
		UpdatedAt:  time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Exec(
		`INSERT INTO agency_settings (id, agency_name, logo_url, updated_at) VALUES (?, ?, ?, ?)`,
		settings.ID, settings.AgencyName, settings.LogoURL, settings.UpdatedAt,
	).Error
	if err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (s *Service) Update(ctx context.Context, actor authdomain.Principal, req domain.UpdateSettingsRequest) (domain.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if req.AgencyName != nil {
		name := strings.TrimSpace(*req.AgencyName)
		if name == "" {
			return domain.Settings{}, domain.ErrInvalidName
		}
		settings.AgencyName = name
	}
	if req.LogoURL != nil {
		settings.LogoURL = req.LogoURL
	}
	settings.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Exec(
		`UPDATE agency_settings SET agency_name = ?, logo_url = ?, updated_at = ? WHERE id = ?`,
		settings.AgencyName, settings.LogoURL, settings.UpdatedAt, settings.ID,
	).Error
	if err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}
