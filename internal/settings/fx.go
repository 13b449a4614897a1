package settings

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/settings/service"
)

var Module = fx.Module("settings.service",
	fx.Provide(service.New),
)
