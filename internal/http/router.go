package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/fuellog/internal/auth"
	"github.com/geocoder89/fuellog/internal/domain/user"
	"github.com/geocoder89/fuellog/internal/http/handlers"
	"github.com/geocoder89/fuellog/internal/http/middlewares"
	"github.com/geocoder89/fuellog/internal/notifications"
	"github.com/geocoder89/fuellog/internal/observability"
	"github.com/geocoder89/fuellog/internal/repo/memory"
	"github.com/geocoder89/fuellog/internal/report"
	"github.com/geocoder89/fuellog/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers. Redis is optional.
type Deps struct {
	Log *slog.Logger

	Users    *memory.UsersRepo
	Records  *memory.RecordsRepo
	Gate     *session.Gate
	JWT      *auth.Manager
	Reporter *report.Reporter

	Simulator *notifications.Simulator
	Hub       *notifications.Hub
	Redis     handlers.Pinger

	Prom     *observability.Prom
	Registry *prometheus.Registry

	Location           *time.Location
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	ServiceName        string
	OpenAPI            []byte
	ReleaseMode        bool
}

func NewRouter(d Deps) *gin.Engine {
	if d.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	if d.Prom == nil {
		d.Registry = prometheus.NewRegistry()
		d.Prom = observability.NewProm(d.Registry)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSAllowedOrigins))
	r.Use(d.Prom.GinHandleMiddleware())
	if d.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))
	}

	// health
	h := handlers.NewHealthHandler(d.Redis)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// docs
	r.GET("/docs", handlers.SwaggerUI)
	if len(d.OpenAPI) > 0 {
		r.GET("/docs/openapi.yaml", handlers.OpenAPISpec(d.OpenAPI))
	}

	authMW := middlewares.NewAuthMiddleware(d.JWT, d.Gate)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(d.Gate, d.JWT, d.Prom, d.Log)
	recordsHandler := handlers.NewRecordsHandler(d.Records, d.Gate, d.Simulator, d.Prom, d.Log)
	adminRecordsHandler := handlers.NewAdminRecordsHandler(d.Reporter, d.Records, d.Location, d.Prom, d.Log)
	usersHandler := handlers.NewUsersHandler(d.Users, d.Log)
	notificationsHandler := handlers.NewNotificationsHandler(d.Hub, d.Simulator, 0)

	// auth
	authGroup := r.Group("/auth")
	authGroup.POST("/login", middlewares.RequireJSON(), authHandler.Login)
	authGroup.POST("/logout", authMW.RequireAuth(), authHandler.Logout)
	authGroup.GET("/session", authMW.RequireAuth(), authHandler.Session)
	authGroup.PUT("/session/view", authMW.RequireAuth(), middlewares.RequireJSON(), authHandler.SwitchView)

	// driver
	driver := r.Group("/driver", authMW.RequireAuth(), authMW.RequireRole(string(user.RoleDriver)))
	driver.GET("/records", recordsHandler.List)
	driver.POST("/records", middlewares.RequireMultipart(), recordsHandler.Submit)

	// admin
	admin := r.Group("/admin", authMW.RequireAuth(), authMW.RequireRole(string(user.RoleAdmin)))
	admin.GET("/records", adminRecordsHandler.List)
	admin.GET("/records/export.csv", adminRecordsHandler.ExportCSV)
	admin.GET("/records/export.xlsx", adminRecordsHandler.ExportXLSX)
	admin.GET("/records/:id/photos/:kind", adminRecordsHandler.Photo)

	admin.GET("/users", usersHandler.List)
	admin.POST("/users", middlewares.RequireJSON(), usersHandler.Create)
	admin.PUT("/users/:id/password", middlewares.RequireJSON(), usersHandler.ChangePassword)
	admin.DELETE("/users/:id", usersHandler.Delete)

	// notifications: any signed-in user
	notes := r.Group("/notifications", authMW.RequireAuth())
	notes.GET("/stream", notificationsHandler.Stream)
	notes.GET("/permission", notificationsHandler.Permission)

	return r
}
