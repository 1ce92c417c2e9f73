package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/stockroom/internal/activity"
	activitydomain "github.com/smallbiznis/stockroom/internal/activity/domain"
	"github.com/smallbiznis/stockroom/internal/auth"
	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/auth/session"
	"github.com/smallbiznis/stockroom/internal/authorization"
	"github.com/smallbiznis/stockroom/internal/cart"
	cartdomain "github.com/smallbiznis/stockroom/internal/cart/domain"
	"github.com/smallbiznis/stockroom/internal/comment"
	commentdomain "github.com/smallbiznis/stockroom/internal/comment/domain"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/material"
	materialdomain "github.com/smallbiznis/stockroom/internal/material/domain"
	"github.com/smallbiznis/stockroom/internal/observability"
	obsmiddleware "github.com/smallbiznis/stockroom/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	obstracing "github.com/smallbiznis/stockroom/internal/observability/tracing"
	"github.com/smallbiznis/stockroom/internal/request"
	requestdomain "github.com/smallbiznis/stockroom/internal/request/domain"
	"github.com/smallbiznis/stockroom/internal/setting"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	activity.Module,
	setting.Module,
	material.Module,
	request.Module,
	comment.Module,
	authorization.Module,
	auth.Module,
	cart.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the router with the shared middleware chain. gatherer
// backs /metrics.
func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics, prometheus.DefaultGatherer)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, _ *Server, log *zap.Logger, shutdowner fx.Shutdowner) {
	log = log.Named("http.server")
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	departments *config.DepartmentsHolder
	authsvc     authdomain.Service
	sessions    *session.Manager
	authzSvc    authorization.Service
	activitySvc activitydomain.Service
	materialSvc materialdomain.Service
	requestSvc  requestdomain.Service
	commentSvc  commentdomain.Service
	cartSvc     cartdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Departments *config.DepartmentsHolder
	Authsvc     authdomain.Service
	Sessions    *session.Manager
	AuthzSvc    authorization.Service
	ActivitySvc activitydomain.Service
	MaterialSvc materialdomain.Service
	RequestSvc  requestdomain.Service
	CommentSvc  commentdomain.Service
	CartSvc     cartdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.handler"),
		departments: p.Departments,
		authsvc:     p.Authsvc,
		sessions:    p.Sessions,
		authzSvc:    p.AuthzSvc,
		activitySvc: p.ActivitySvc,
		materialSvc: p.MaterialSvc,
		requestSvc:  p.RequestSvc,
		commentSvc:  p.CommentSvc,
		cartSvc:     p.CartSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth", s.ResolveActor())

	auth.POST("/unlock", s.Unlock)
	auth.POST("/lock", s.Lock)
	auth.GET("/me", s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.ResolveActor())

	api.GET("/departments", s.ListDepartments)
	api.GET("/statuses", s.ListStatuses)

	// -------- Catalog --------
	api.GET("/materials", s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogView), s.ListMaterials)

	// -------- Cart --------
	cart := api.Group("/cart", s.CartSession(), s.authorize(authorization.ObjectRequest, authorization.ActionRequestSubmit))
	{
		cart.GET("", s.GetCart)
		cart.DELETE("", s.ClearCart)
		cart.PUT("/department", s.SetCartDepartment)
		cart.POST("/items", s.AddCartItem)
		cart.DELETE("/items/:index", s.RemoveCartItem)
		cart.POST("/submit", s.SubmitCart)
	}

	// -------- Department views --------
	api.GET("/departments/:slug/summary", s.authorize(authorization.ObjectRequest, authorization.ActionRequestView), s.DepartmentSummary)
	api.GET("/departments/:slug/requests", s.authorize(authorization.ObjectRequest, authorization.ActionRequestView), s.ListDepartmentRequests)

	// -------- Comments --------
	api.GET("/requests/:id/comments", s.authorize(authorization.ObjectComment, authorization.ActionCommentRead), s.ListComments)
	api.POST("/requests/:id/comments", s.authorize(authorization.ObjectComment, authorization.ActionCommentPost), s.PostComment)
	api.POST("/requests/:id/comments/read", s.authorize(authorization.ObjectComment, authorization.ActionCommentRead), s.MarkCommentsRead)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.ResolveActor(), s.RequireManager())

	admin.GET("/dashboard", s.authorize(authorization.ObjectRequest, authorization.ActionRequestView), s.Dashboard)

	// -------- Requests --------
	admin.GET("/requests", s.authorize(authorization.ObjectRequest, authorization.ActionRequestView), s.ListManagerRequests)
	admin.POST("/requests/:id/status", s.authorize(authorization.ObjectRequest, authorization.ActionRequestTransition), s.UpdateRequestStatus)
	admin.POST("/batches/:batch_id/status", s.authorize(authorization.ObjectRequest, authorization.ActionRequestTransition), s.UpdateBatchStatus)

	// -------- Catalog --------
	admin.POST("/materials", s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogManage), s.CreateMaterial)
	admin.POST("/materials/import", s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogManage), s.ImportMaterials)
	admin.GET("/materials/template.csv", s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogManage), s.MaterialsTemplateCSV)
	admin.GET("/materials/template.xlsx", s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogManage), s.MaterialsTemplateXLSX)

	// -------- Settings --------
	admin.PUT("/settings/pin", s.authorize(authorization.ObjectSettings, authorization.ActionSettingsManage), s.ChangePIN)

	// -------- Activity --------
	admin.GET("/activity", s.authorize(authorization.ObjectActivity, authorization.ActionActivityView), s.ListActivity)
}
