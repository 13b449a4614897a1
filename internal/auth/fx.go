package auth

import (
	"github.com/agencydesk/agencydesk/internal/auth/repository"
	"github.com/agencydesk/agencydesk/internal/auth/service"
	"github.com/agencydesk/agencydesk/internal/auth/token"
	"github.com/agencydesk/agencydesk/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
		func(cfg config.Config) *token.Signer {
			return token.NewSigner(cfg.JWTSecret)
		},
	),
)
