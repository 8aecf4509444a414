package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "github.com/naratama/library-service/library/swagger"
	md "github.com/naratama/library-service/pkg/middleware"
	"github.com/naratama/library-service/pkg/validate"
)

const version = "1.0.0"

// Services groups the use cases the routes are served by.
type Services struct {
	Auth          AuthService
	Users         UserService
	Books         BookService
	Loans         LoanService
	Rooms         RoomService
	Announcements AnnouncementService
	Payments      PaymentService
}

type Config struct {
	CookieName   string
	SecureCookie bool
	FrontendURL  string
	Production   bool
	RPS          float64
	BodyLimit    string
}

type Handler struct {
	svc      Services
	sessions SessionStore
	oauth    OAuthProvider
	cfg      Config
	log      *zap.Logger
}

// New builds the handler. oauth may be nil when social login is not configured.
func New(svc Services, sessions SessionStore, oauth OAuthProvider, cfg Config, log *zap.Logger) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "naratama.sid"
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 100
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "2M"
	}
	return &Handler{
		svc:      svc,
		sessions: sessions,
		oauth:    oauth,
		cfg:      cfg,
		log:      log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	const baseRPS = 10

	e.HTTPErrorHandler = h.errorHandler
	e.Validator = validate.NewCustomValidator()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{h.cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Use(middleware.Secure())
	e.Use(md.Metrics)

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/", h.Root)
	base.GET("/manage/health", h.Health)
	base.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		middleware.BodyLimit(h.cfg.BodyLimit),
		md.NewRateLimiter(rate.Limit(h.cfg.RPS)),
		h.loadSession,
	)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.Me, md.RequireAuth)
	authGroup.PUT("/change-password", h.ChangePassword, md.RequireAuth)
	authGroup.PUT("/set-password", h.SetPassword, md.RequireAuth)
	authGroup.POST("/otp/send", h.SendOTP)
	authGroup.POST("/otp/verify", h.VerifyOTP)
	authGroup.GET("/google", h.GoogleLogin)
	authGroup.GET("/google/callback", h.GoogleCallback)

	users := api.Group("/users", md.RequireAuth)
	users.GET("", h.ListUsers, md.RequireStaff)
	users.POST("", h.CreateUser, md.RequireStaff)
	users.GET("/phone/:phoneNumber", h.GetUserByPhone, md.RequireStaff)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeactivateUser, md.RequireAdmin)
	users.PUT("/:id/membership", h.ActivateMembership, md.RequireStaff)
	users.DELETE("/:id/membership", h.DeactivateMembership, md.RequireStaff)

	books := api.Group("/books")
	books.GET("", h.ListBooks)
	books.GET("/categories", h.ListCategories)
	books.GET("/new", h.ListNewBooks)
	books.GET("/search", h.SearchBooks)
	books.GET("/:id", h.GetBook)
	books.POST("", h.CreateBook, md.RequireStaff)
	books.POST("/bulk", h.CreateBooks, md.RequireStaff)
	books.PUT("/:id", h.UpdateBook, md.RequireStaff)
	books.PATCH("/:id/quantity", h.UpdateBookQuantity, md.RequireStaff)
	books.DELETE("/:id", h.DeleteBook, md.RequireStaff)

	loans := api.Group("/book-loans", md.RequireAuth)
	loans.GET("", h.ListLoans)
	loans.GET("/overdue", h.ListOverdueLoans, md.RequireStaff)
	loans.GET("/:id", h.GetLoan)
	loans.POST("", h.CreateLoan)
	loans.PUT("/:id/return", h.ReturnLoan, md.RequireStaff)
	loans.PUT("/:id/extend", h.ExtendLoan)

	rooms := api.Group("/rooms")
	rooms.GET("", h.ListRooms)
	rooms.GET("/bookings", h.ListBookings, md.RequireAuth)
	rooms.POST("/bookings", h.CreateBooking, md.RequireAuth)
	rooms.GET("/bookings/:id", h.GetBooking, md.RequireAuth)
	rooms.PUT("/bookings/:id/status", h.UpdateBookingStatus, md.RequireStaff)
	rooms.DELETE("/bookings/:id", h.CancelBooking, md.RequireAuth)
	rooms.GET("/:id", h.GetRoom)
	rooms.GET("/:id/availability", h.RoomAvailability)
	rooms.POST("", h.CreateRoom, md.RequireStaff)
	rooms.PUT("/:id", h.UpdateRoom, md.RequireStaff)

	announcements := api.Group("/announcements")
	announcements.GET("", h.ListAnnouncements)
	announcements.GET("/:id", h.GetAnnouncement)
	announcements.POST("", h.CreateAnnouncement, md.RequireStaff)
	announcements.PUT("/:id", h.UpdateAnnouncement, md.RequireStaff)
	announcements.DELETE("/:id", h.DeleteAnnouncement, md.RequireStaff)

	payments := api.Group("/payments")
	payments.POST("/notification", h.PaymentNotification)
	payments.POST("/membership", h.CreateMembershipPayment, md.RequireAuth)
	payments.POST("/room-booking/:id", h.CreateBookingPayment, md.RequireAuth)
	payments.POST("/finish", h.FinishPayment, md.RequireAuth)
	payments.GET("/:orderId/status", h.PaymentStatus, md.RequireAuth)

	return e
}

// Health godoc
// @Summary liveness probe
// @Success 200 {string} string "OK"
// @Router /manage/health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Naratama Library API Server",
		"version": version,
	})
}
