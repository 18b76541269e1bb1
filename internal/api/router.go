package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/autostack/access-service/docs"
	"github.com/autostack/access-service/internal/api/handler"
	"github.com/autostack/access-service/internal/api/middleware"
	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/core/ports"
	"github.com/autostack/access-service/internal/core/service"
)

// Dependencies are the collaborators the router wires into handlers and the guard.
type Dependencies struct {
	AuthService ports.AuthService
	Codec       ports.TokenCodec
	Store       ports.PrincipalStore
	Recorder    ports.AuthEventRecorder            // optional
	Checks      map[string]handler.DependencyCheck // readiness checks
	Registerer  prometheus.Registerer              // defaults to prometheus.DefaultRegisterer
	Log         zerolog.Logger
}

// route declares an endpoint. Guarded routes run behind the Guard; role, when
// set, is the only role allowed through.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	guarded bool
	role    domain.Role
}

func authRoutes(h *handler.AuthHandler) []route {
	return []route{
		{method: http.MethodPost, path: "/auth/register", handler: h.Register},
		{method: http.MethodPost, path: "/auth/login", handler: h.Login},
		{method: http.MethodGet, path: "/auth/profile", handler: h.Profile, guarded: true},
		{method: http.MethodGet, path: "/auth/admin", handler: h.Admin, guarded: true, role: domain.RoleAdmin},
	}
}

// routeTable collects the declared role requirements of routes.
func routeTable(routes []route) domain.RouteTable {
	required := make(map[string]domain.Role)
	for _, r := range routes {
		if r.role != "" {
			required[domain.RouteID(r.method, r.path)] = r.role
		}
	}
	return domain.NewRouteTable(required)
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "access",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	routes := authRoutes(authHandler)
	guard := service.NewGuard(deps.Codec, deps.Store, routeTable(routes))

	guardMiddleware := middleware.Guard(guard, deps.Recorder, deps.Log.With().Str("component", "guard").Logger())

	for _, r := range routes {
		if r.guarded {
			e.Add(r.method, r.path, r.handler, guardMiddleware)
			continue
		}
		e.Add(r.method, r.path, r.handler)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/docs/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
