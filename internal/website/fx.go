package website

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/website/repository"
	"github.com/agencydesk/agencydesk/internal/website/service"
)

var Module = fx.Module("website.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
