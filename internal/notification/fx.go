package notification

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/notification/repository"
	"github.com/agencydesk/agencydesk/internal/notification/service"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
