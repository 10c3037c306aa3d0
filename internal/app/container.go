package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courtside/venue-booking-backend/internal/announcement"
	"github.com/courtside/venue-booking-backend/internal/api"
	"github.com/courtside/venue-booking-backend/internal/auth"
	"github.com/courtside/venue-booking-backend/internal/booking"
	"github.com/courtside/venue-booking-backend/internal/payment"
	"github.com/courtside/venue-booking-backend/internal/realtime"
	"github.com/courtside/venue-booking-backend/internal/user"
	"github.com/courtside/venue-booking-backend/internal/venue"
	"github.com/courtside/venue-booking-backend/internal/worker"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	RazorpayKeyID     string
	RazorpayKeySecret string

	PendingPaymentTTL time.Duration
	SweepInterval     time.Duration
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	Hub        *realtime.Hub
	Sweeper    *worker.PendingSweeper
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	hub := realtime.NewHub()

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Venue Module
	venueRepo := venue.NewPgxRepository(cfg.DBPool)
	venueService := venue.NewService(venueRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, venueService, hub)

	// Payment Module
	gateway := payment.NewDisabledGateway()
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateway = payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	}
	paymentRepo := payment.NewPgxRepository(cfg.DBPool)
	paymentService := payment.NewService(paymentRepo, bookingService, gateway, cfg.RazorpayKeySecret)

	// Announcement Module
	annRepo := announcement.NewPgxRepository(cfg.DBPool)
	annService := announcement.NewService(annRepo, hub)

	// Realtime endpoint. Origins are enforced by CORS for REST; the
	// WebSocket upgrade mirrors the same policy.
	var checkOrigin func(r *http.Request) bool
	if !cfg.IsProduction || len(cfg.ProdOrigins) == 0 {
		checkOrigin = func(*http.Request) bool { return true }
	} else {
		allowed := make(map[string]struct{}, len(cfg.ProdOrigins))
		for _, o := range cfg.ProdOrigins {
			allowed[o] = struct{}{}
		}
		checkOrigin = func(r *http.Request) bool {
			_, ok := allowed[r.Header.Get("Origin")]
			return ok
		}
	}
	realtimeHandler := realtime.NewHandler(hub, jwtManager, userService, checkOrigin)

	// Background sweeper for abandoned checkouts.
	sweeper := worker.NewPendingSweeper(bookingService, cfg.SweepInterval, cfg.PendingPaymentTTL)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		UserService:    userService,
		VenueService:   venueService,
		BookingService: bookingService,
		PaymentService: paymentService,
		AnnService:     annService,
		Realtime:       realtimeHandler,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:     router,
		Hub:        hub,
		Sweeper:    sweeper,
		JWTManager: jwtManager,
	}
}
