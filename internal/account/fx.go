package account

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/account/repository"
	"github.com/agencydesk/agencydesk/internal/account/service"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
