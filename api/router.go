package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/flightsearch/api/swagger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

const swaggerDocPath = "/swagger/flightsearch.swagger.json"

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type RouterDeps struct {
	Log        logrus.FieldLogger
	Auth       *AuthHandler
	Flights    *FlightHandler
	Airports   *AirportHandler
	Authn      Authenticator
	SwaggerDir string
	Checks     map[string]HealthCheck
}

func NewRouter(deps RouterDeps) *gin.Engine {
	useWireFieldNames()

	router := gin.New()
	router.Use(RequestID(), Recovery(deps.Log), AccessLog(deps.Log), Metrics())

	router.GET("/healthz", healthz(deps.Checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if deps.SwaggerDir != "" {
		router.Static("/swagger", deps.SwaggerDir)
	} else {
		router.GET(swaggerDocPath, func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", swagger.Doc)
		})
	}
	router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerDocPath))))

	authGroup := router.Group("/auth")
	deps.Auth.Register(authGroup)

	protected := router.Group("", RequireAuth(deps.Authn))
	protected.GET("/auth/me", deps.Auth.me)
	deps.Flights.Register(protected.Group("/flights"))
	deps.Airports.Register(protected.Group("/airports"))

	return router
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if code != http.StatusOK {
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "checks": results})
	}
}
