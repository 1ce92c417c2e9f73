package material

import (
	"github.com/smallbiznis/stockroom/internal/material/repository"
	"github.com/smallbiznis/stockroom/internal/material/service"
	"go.uber.org/fx"
)

var Module = fx.Module("material.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
