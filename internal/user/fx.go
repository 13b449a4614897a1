package user

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/user/repository"
	"github.com/agencydesk/agencydesk/internal/user/service"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
