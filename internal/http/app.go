// Package http composes the gin engine from the modules built in main.
package http

import (
	"context"
	"net/http"

	"leadconnect_backend/platform/config"
	"leadconnect_backend/platform/httpkit"
	"leadconnect_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type RouterConfig interface {
	config.HTTPConfig
	config.AdminConfig
}

// HealthChecker backs GET /api/health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Module mounts one bounded context's routes.
type Module interface {
	Name() string
	RegisterRoutes(rc *RouterContext)
}

// RouterContext hands modules the groups they may mount on. Admin already
// requires X-Admin-Key; ChatRateLimiter is shared by every public chat route.
type RouterContext struct {
	V1              *gin.RouterGroup
	Admin           *gin.RouterGroup
	ChatRateLimiter *httpkit.IPRateLimiter
}

// App is assembled by cmd/api and consumed by router.New.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Metrics http.Handler
	Modules []Module
}
