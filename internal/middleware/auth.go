package middleware

import (
	"net/http"
	"strings"

	"inventory-service/internal/ledger"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and resolves the acting user.
// The resolved actor carries the company scope every downstream call uses;
// handlers never re-derive authorization beyond that scope.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		prometheus.AuthAttemptsCounter.Inc()

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		actor := ledger.Actor{
			UserID:  claims.UserID,
			IsOwner: claims.IsOwner,
		}
		if claims.CompanyID != nil {
			actor.CompanyID = *claims.CompanyID
			log.Info("Request authenticated with company context",
				zap.Uint("user_id", claims.UserID),
				zap.Uint("company_id", *claims.CompanyID),
				zap.Bool("is_owner", claims.IsOwner))
		} else {
			prometheus.CompanyContextMissingCounter.Inc()
			log.Info("Request authenticated without company context",
				zap.Uint("user_id", claims.UserID))
		}

		// Store actor info in context for later use
		c.Set("actor", actor)
		c.Set("email", claims.Email)

		prometheus.AuthSuccessCounter.Inc()
		return next(c)
	}
}

// ActorFromContext retrieves the resolved actor from the request context
func ActorFromContext(c echo.Context) (ledger.Actor, bool) {
	actor, ok := c.Get("actor").(ledger.Actor)
	return actor, ok
}
