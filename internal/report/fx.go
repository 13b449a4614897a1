package report

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/report/service"
)

var Module = fx.Module("report.service",
	fx.Provide(service.New),
)
