package main

import (
	"net/http"
	"strings"

	"github.com/Yulian302/classroom-tokens/classroom"
	"github.com/Yulian302/classroom-tokens/health"
	"github.com/Yulian302/classroom-tokens/logging"
	"github.com/Yulian302/classroom-tokens/middleware"
	"github.com/Yulian302/classroom-tokens/routers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func BuildRouter(app *App) *gin.Engine {
	if app.Config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	applyCors(r, app)
	applyLogging(r, app)
	applyRecovery(r, app)
	applyTracing(r, app)
	applySwagger(r, app)

	registerRoutes(r, app, app.Services)

	return r
}

func applyCors(r *gin.Engine, app *App) {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}

	origins := strings.Split(app.Config.CorsOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	r.Use(cors.New(cfg))
}

func applyLogging(r *gin.Engine, app *App) {
	r.Use(logging.LoggerMiddleware(app.Logger))
}

func applyRecovery(r *gin.Engine, app *App) {
	r.Use(middleware.Recovery())
}

func applyTracing(r *gin.Engine, app *App) {
	if app.TracerProvider == nil {
		return
	}
	r.Use(otelgin.Middleware(app.Config.ServiceName, otelgin.WithTracerProvider(app.TracerProvider)))
}

func applySwagger(r *gin.Engine, app *App) {
	if app.Config.IsProd() {
		return
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func registerRoutes(r *gin.Engine, app *App, s *Services) {
	health.RegisterHealthRoutes(
		health.NewHealthHandler(s.ReadinessChecks()...),
		r,
	)

	routers.RegisterClassroomRoutes(
		classroom.NewClassroomHandler(s.Subscriptions),
		r,
	)
}
