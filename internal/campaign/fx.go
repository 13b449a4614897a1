package campaign

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/campaign/repository"
	"github.com/agencydesk/agencydesk/internal/campaign/service"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
