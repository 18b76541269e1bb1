package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/autostack/access-service/internal/api/metrics"
	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/core/ports"
)

// PrincipalKey is the echo context key holding the authorized *domain.Principal.
const PrincipalKey = "principal"

// Guard authorizes every request against the route it matched. Denials all
// surface as the same 401; the specific reason is only logged and counted.
// Failures of the authorizer's dependencies surface as 500.
func Guard(authz ports.Authorizer, recorder ports.AuthEventRecorder, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			routeID := domain.RouteID(req.Method, c.Path())

			principal, err := authz.Authorize(req.Context(), req.Header.Get(echo.HeaderAuthorization), routeID)
			if err != nil {
				if !domain.IsDenial(err) {
					metrics.GuardDecisionsTotal.WithLabelValues("internal").Inc()
					log.Error().Err(err).Str("route", routeID).Msg("authorization failed")
					return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
				}

				reason := domain.DenialReason(err)
				metrics.GuardDecisionsTotal.WithLabelValues(reason).Inc()
				log.Debug().Err(err).Str("route", routeID).Str("reason", reason).Msg("access denied")
				if recorder != nil {
					recorder.Record(domain.AuthEvent{
						Kind:       domain.EventAccessDenied,
						Reason:     reason,
						RouteID:    routeID,
						OccurredAt: time.Now().UTC(),
					})
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized").SetInternal(err)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("authorized").Inc()
			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}
