package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "github.com/rakibul/healthdir-api/internal/handler/admin"
	authhandler "github.com/rakibul/healthdir-api/internal/handler/auth"
	directoryhandler "github.com/rakibul/healthdir-api/internal/handler/directory"
	doctorhandler "github.com/rakibul/healthdir-api/internal/handler/doctor"
	healthhandler "github.com/rakibul/healthdir-api/internal/handler/health"
	patienthandler "github.com/rakibul/healthdir-api/internal/handler/patient"
	"github.com/rakibul/healthdir-api/internal/middleware"
	"github.com/rakibul/healthdir-api/internal/model"
)

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	authH      *authhandler.Handler
	directoryH *directoryhandler.Handler
	doctorH    *doctorhandler.Handler
	patientH   *patienthandler.Handler
	adminH     *adminhandler.Handler
	healthH    *healthhandler.Handler
	cache      *middleware.ResponseCache
	metrics    *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit     float64
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
	DirectoryTTL  time.Duration
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authhandler.Handler,
	directoryH *directoryhandler.Handler,
	doctorH *doctorhandler.Handler,
	patientH *patienthandler.Handler,
	adminH *adminhandler.Handler,
	healthH *healthhandler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	if config.DirectoryTTL <= 0 {
		config.DirectoryTTL = 30 * time.Second
	}

	r := &Router{
		engine:     engine,
		auth:       auth,
		authH:      authH,
		directoryH: directoryH,
		doctorH:    doctorH,
		patientH:   patientH,
		adminH:     adminH,
		healthH:    healthH,
		cache:      middleware.NewResponseCache(config.DirectoryTTL),
		metrics:    initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.RequestID(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupDoctorRoutes(protected)
	r.setupPatientRoutes(protected)
	r.setupAdminRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.healthH.LivenessCheck)
		health.GET("/ready", r.healthH.ReadinessCheck)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", r.authH.Signup)
		auth.POST("/login", r.authH.Login)
	}

	directory := rg.Group("/doctors")
	directory.Use(r.cache.Cache())
	{
		directory.GET("", r.directoryH.ListDoctors)
		directory.GET("/verify", r.directoryH.VerifyRegistration)
		directory.GET("/:id", r.directoryH.GetDoctor)
	}
}

// setupDoctorRoutes gates the dashboard per request; a doctor whose record
// disappears loses access on their next call.
func (r *Router) setupDoctorRoutes(rg *gin.RouterGroup) {
	doctors := rg.Group("/doctor")
	doctors.Use(r.auth.RequireRole(model.RoleDoctor), r.cache.Invalidate())
	{
		doctors.GET("/profile", r.doctorH.GetProfile)
		doctors.PUT("/profile", r.doctorH.UpdateProfile)
		doctors.PUT("/visibility", r.doctorH.SetVisibility)

		doctors.GET("/chambers", r.doctorH.ListChambers)
		doctors.POST("/chambers", r.doctorH.AddChamber)
		doctors.PUT("/chambers/:id", r.doctorH.UpdateChamber)
		doctors.DELETE("/chambers/:id", r.doctorH.DeleteChamber)

		doctors.GET("/appointments", r.doctorH.ListAppointments)
		doctors.GET("/appointments/:id", r.doctorH.GetAppointment)
		doctors.PATCH("/appointments/:id/status", r.doctorH.UpdateAppointmentStatus)

		doctors.GET("/patients", r.doctorH.ListPatientHistory)
	}
}

func (r *Router) setupPatientRoutes(rg *gin.RouterGroup) {
	patients := rg.Group("/patient")
	patients.Use(r.auth.RequireRole(model.RolePatient))
	{
		patients.GET("/profile", r.patientH.GetProfile)
		patients.PUT("/profile", r.patientH.UpdateProfile)

		patients.POST("/appointments", r.patientH.BookAppointment)
		patients.GET("/appointments", r.patientH.ListAppointments)
		patients.GET("/appointments/:id", r.patientH.GetAppointment)
		patients.POST("/appointments/:id/cancel", r.patientH.CancelAppointment)
	}
}

func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(r.auth.RequireRole(model.RoleAdmin), r.cache.Invalidate())
	{
		admin.GET("/doctors/pending", r.adminH.ListPendingDoctors)
		admin.POST("/doctors/:id/approve", r.adminH.ApproveDoctor)
		admin.POST("/doctors/:id/reject", r.adminH.RejectDoctor)
		admin.PUT("/doctors/:id/visibility", r.adminH.SetDoctorVisibility)
		admin.PUT("/doctors/:id/feature", r.adminH.FeatureDoctor)
		admin.DELETE("/doctors/:id", r.adminH.DeleteDoctor)

		admin.POST("/doctors/:id/chambers", r.adminH.AddChamber)
		admin.PUT("/chambers/:id", r.adminH.UpdateChamber)
		admin.DELETE("/chambers/:id", r.adminH.DeleteChamber)

		admin.POST("/admins", r.adminH.GrantAdmin)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
