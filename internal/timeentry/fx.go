package timeentry

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/timeentry/repository"
	"github.com/agencydesk/agencydesk/internal/timeentry/service"
)

var Module = fx.Module("timeentry.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
