package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/courtside/venue-booking-backend/internal/announcement"
	annHttp "github.com/courtside/venue-booking-backend/internal/announcement/http"
	"github.com/courtside/venue-booking-backend/internal/auth"
	"github.com/courtside/venue-booking-backend/internal/booking"
	bookingHttp "github.com/courtside/venue-booking-backend/internal/booking/http"
	"github.com/courtside/venue-booking-backend/internal/payment"
	paymentHttp "github.com/courtside/venue-booking-backend/internal/payment/http"
	"github.com/courtside/venue-booking-backend/internal/realtime"
	"github.com/courtside/venue-booking-backend/internal/user"
	userHttp "github.com/courtside/venue-booking-backend/internal/user/http"
	"github.com/courtside/venue-booking-backend/internal/venue"
	venueHttp "github.com/courtside/venue-booking-backend/internal/venue/http"
)

// Config carries the services the router wires into HTTP handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  []string

	UserService    user.Service
	VenueService   venue.Service
	BookingService booking.Service
	PaymentService payment.Service
	AnnService     announcement.Service
	Realtime       *realtime.Handler
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && len(cfg.ProdOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// sysAdminMiddleware: Further checks if the authenticated user has System Admin privileges.
	sysAdminMiddleware := RequireSystemAdmin(cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	venueHandler := venueHttp.NewHandler(cfg.VenueService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	paymentHandler := paymentHttp.NewHandler(cfg.PaymentService)
	annHandler := annHttp.NewHandler(cfg.AnnService)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		venueHttp.RegisterRoutes(v1, venueHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		paymentHttp.RegisterRoutes(v1, paymentHandler, authMiddleware)
		annHttp.RegisterRoutes(v1, annHandler, authMiddleware, sysAdminMiddleware)

		// WebSocket endpoint; the handler authenticates via token query
		// param or Authorization header itself.
		v1.GET("/ws", cfg.Realtime.Serve)
	}

	return r
}
