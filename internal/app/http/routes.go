package routes

import (
	"log/slog"
	"net/http"
	"time"

	"sanctuary-app/config"
	adminapi "sanctuary-app/internal/api/admin"
	authapi "sanctuary-app/internal/api/auth"
	"sanctuary-app/internal/api/billing"
	catalogapi "sanctuary-app/internal/api/catalog"
	contentapi "sanctuary-app/internal/api/content"
	journalapi "sanctuary-app/internal/api/journal"
	newsletterapi "sanctuary-app/internal/api/newsletter"
	stripewebhooks "sanctuary-app/internal/api/stripewebhook"
	"sanctuary-app/internal/api/users"
	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/entitlement"
	"sanctuary-app/internal/infra/newsletter"
	"sanctuary-app/internal/infra/store"
	"sanctuary-app/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs from the process.
type Deps struct {
	DB            *gorm.DB
	Gateway       *entitlement.Gateway
	Metrics       *metrics.Collector
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
	Google        *authapi.GoogleSignIn
	Newsletter    *newsletter.ConvertKit
	Captcha       *newsletter.Recaptcha
	RateLimiter   *middleware.RateLimiter
	StatusLimiter *middleware.RateLimiter // checkout status polling
}

// NewEngine builds the gin engine with the global middleware stack.
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var rec middleware.HTTPRecorder
	if d.Metrics != nil {
		rec = d.Metrics
	}
	r.Use(middleware.RequestLogger(logger, rec))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORS_ORIGINS,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	userStore := store.NewUsers(d.DB)
	ledger := store.NewLedger(d.DB)

	authH := authapi.NewHandler(d.DB, d.Google)
	usersH := users.NewHandler(userStore, ledger)
	billingH := billing.NewHandler(d.Gateway, ledger, config.PollPolicy())
	webhookH := stripewebhooks.NewHandler(ledger, config.STRIPE_WEBHOOK_SECRET)
	catalogH := catalogapi.NewHandler(store.NewCatalog(d.DB))
	contentH := contentapi.NewHandler(d.DB)
	journalH := journalapi.NewHandler(d.DB, userStore, d.Gateway)
	newsletterH := newsletterapi.NewHandler(d.Captcha, d.Newsletter)
	adminH := adminapi.NewHandler(d.DB, ledger)

	limiter := d.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	}
	statusLimiter := d.StatusLimiter
	if statusLimiter == nil {
		statusLimiter = middleware.NewRateLimiter(middleware.StatusPollRateLimiterConfig())
	}

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	api := r.Group("/api")

	// Raw body is needed for signature verification; keep it out of sanitizing.
	api.POST("/payments/webhook", webhookH.StripeWebhook)
	api.GET("/health", func(c *gin.Context) {
		status, dbState := http.StatusOK, "ok"
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, dbState = http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(status, gin.H{"status": "healthy", "database": dbState, "timestamp": time.Now().UTC()})
	})

	// Anonymous routes; JSON bodies are stripped of markup.
	public := api.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/auth/register", limiter.Middleware("register"), authH.Register)
	public.POST("/auth/login", limiter.Middleware("login"), authH.Login)
	public.GET("/auth/google", authH.GoogleStart)
	public.GET("/auth/google/callback", authH.GoogleCallback)

	public.GET("/products", catalogH.ListProducts)
	public.GET("/products/:id", catalogH.GetProduct)
	public.GET("/blog/posts", contentH.ListBlogPosts)
	public.GET("/blog/posts/:id", contentH.GetBlogPost)
	public.GET("/testimonials", contentH.ListTestimonials)
	public.POST("/contact", limiter.Middleware("contact"), contentH.CreateContactMessage)
	public.POST("/newsletter/subscribe", limiter.Middleware("newsletter"), newsletterH.Subscribe)

	public.GET("/payments/checkout/status/:session_id", statusLimiter.Middleware("checkout_status"), billingH.CheckoutStatus)

	// The gateway itself rejects anonymous callers with the log_in action.
	gated := api.Group("/")
	gated.Use(middleware.OptionalAuth(userStore))
	gated.POST("/payments/checkout/session", billingH.CreateCheckoutSession)
	gated.GET("/access/:resource_id", billingH.CheckAccess)
	gated.GET("/rooms/:room_id/prompts", middleware.RequireEntitlement(d.Gateway, "room_id"), contentH.ListRoomPrompts)

	// Authenticated
	auth := api.Group("/")
	auth.Use(middleware.AuthMiddleware(userStore))
	auth.GET("/auth/me", usersH.GetCurrentUser)
	auth.GET("/payments/purchases", billingH.GetPurchaseHistory)
	auth.GET("/journal/suggestion", usersH.PremiumSuggestion)
	auth.GET("/journal/entries", journalH.ListEntries)
	auth.GET("/journal/entries/:id", journalH.GetEntry)

	journalWrites := auth.Group("/journal/entries")
	journalWrites.Use(middleware.SanitizeAndCleanInputMiddleware())
	journalWrites.POST("", journalH.CreateEntry)
	journalWrites.PUT("/:id", journalH.UpdateEntry)
	journalWrites.DELETE("/:id", journalH.DeleteEntry)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(userStore), middleware.RequireRole("admin"))
	admin.GET("/users", adminH.ListAllUsers)
	admin.GET("/users/:id", adminH.GetUserDetails)
	admin.GET("/purchases", adminH.ListAllPurchases)
	admin.GET("/stats", adminH.GetAdminStats)
	admin.GET("/contact-messages", adminH.ListContactMessages)
}
