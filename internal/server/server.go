package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymdesk/internal/auth"
	"gymdesk/internal/booking"
	"gymdesk/internal/client"
	"gymdesk/internal/config"
	"gymdesk/internal/membership"
	"gymdesk/internal/notify"
	"gymdesk/internal/payment"
	"gymdesk/internal/plan"
	"gymdesk/internal/schedule"
	"gymdesk/internal/staff"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, events *notify.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	planRepo := plan.NewRepository(db)
	clientRepo := client.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	membershipRepo := membership.NewRepository(db, paymentRepo, clientRepo)
	scheduleRepo := schedule.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	membershipService := membership.NewService(membershipRepo, planRepo, events)
	bookingService := booking.NewService(bookingRepo, scheduleRepo, membershipService, events)

	staffHandler := staff.NewHandler(db, cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	planHandler := plan.NewHandler(db)
	clientHandler := client.NewHandler(db)
	paymentHandler := payment.NewHandler(db)
	membershipHandler := membership.NewHandler(membershipService)
	scheduleHandler := schedule.NewHandler(db)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/auth")
	{
		public.POST("/register", staffHandler.Register)
		public.POST("/login", staffHandler.Login)
		public.POST("/refresh", staffHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.AccessTokenSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", staffHandler.Me)

		protected.POST("/clients", clientHandler.CreateClient)
		protected.GET("/clients", clientHandler.ListClients)
		protected.GET("/clients/:clientID", clientHandler.GetClient)
		protected.GET("/clients/:clientID/memberships", membershipHandler.History)
		protected.GET("/clients/:clientID/entitlement", membershipHandler.Entitlement)
		protected.GET("/clients/:clientID/payments", paymentHandler.ListClientPayments)
		protected.GET("/clients/:clientID/bookings", bookingHandler.ListByClient)

		protected.GET("/plans", planHandler.ListPlans)
		protected.GET("/plans/:planID", planHandler.GetPlan)

		protected.POST("/memberships", membershipHandler.Sell)
		protected.GET("/memberships/:membershipID", membershipHandler.Get)
		protected.POST("/memberships/:membershipID/renew", membershipHandler.Renew)
		protected.POST("/memberships/:membershipID/suspend", membershipHandler.Suspend)
		protected.POST("/memberships/:membershipID/reactivate", membershipHandler.Reactivate)
		protected.POST("/memberships/:membershipID/cancel", membershipHandler.Cancel)

		protected.POST("/payments", paymentHandler.RecordPayment)
		protected.GET("/payments/:paymentID", paymentHandler.GetPayment)

		protected.GET("/schedules", scheduleHandler.ListSchedules)
		protected.GET("/schedules/:scheduleID", scheduleHandler.GetSchedule)
		protected.GET("/schedules/:scheduleID/availability", bookingHandler.GetAvailability)
		protected.GET("/schedules/:scheduleID/bookings", bookingHandler.ListForSlot)
		protected.POST("/schedules/:scheduleID/bookings", bookingHandler.Book)

		protected.POST("/bookings/:bookingID/cancel", bookingHandler.Cancel)
		protected.POST("/bookings/:bookingID/attended", bookingHandler.MarkAttended)
		protected.POST("/bookings/:bookingID/no-show", bookingHandler.MarkNoShow)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin", "manager"))
	{
		admin.POST("/plans", planHandler.CreatePlan)
		admin.PATCH("/plans/:planID", planHandler.UpdatePlan)
		admin.DELETE("/plans/:planID", planHandler.DeactivatePlan)

		admin.POST("/schedules", scheduleHandler.CreateSchedule)
		admin.DELETE("/schedules/:scheduleID", scheduleHandler.DeactivateSchedule)

		admin.POST("/payments/:paymentID/refund", paymentHandler.RefundPayment)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
