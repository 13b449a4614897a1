package changelog

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/changelog/repository"
	"github.com/agencydesk/agencydesk/internal/changelog/service"
)

var Module = fx.Module("changelog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
