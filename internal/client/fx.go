package client

import (
	"go.uber.org/fx"

	"github.com/agencydesk/agencydesk/internal/client/repository"
	"github.com/agencydesk/agencydesk/internal/client/service"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
