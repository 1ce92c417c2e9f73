package comment

import (
	"github.com/smallbiznis/stockroom/internal/comment/repository"
	"github.com/smallbiznis/stockroom/internal/comment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("comment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
