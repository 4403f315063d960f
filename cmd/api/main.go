package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamkoubyte/Koubyte-sub001/internal/accounts"
	"github.com/teamkoubyte/Koubyte-sub001/internal/appointments"
	"github.com/teamkoubyte/Koubyte-sub001/internal/auth"
	"github.com/teamkoubyte/Koubyte-sub001/internal/blog"
	"github.com/teamkoubyte/Koubyte-sub001/internal/cache"
	"github.com/teamkoubyte/Koubyte-sub001/internal/cart"
	"github.com/teamkoubyte/Koubyte-sub001/internal/catalog"
	"github.com/teamkoubyte/Koubyte-sub001/internal/config"
	"github.com/teamkoubyte/Koubyte-sub001/internal/db"
	"github.com/teamkoubyte/Koubyte-sub001/internal/discounts"
	"github.com/teamkoubyte/Koubyte-sub001/internal/mailer"
	"github.com/teamkoubyte/Koubyte-sub001/internal/messages"
	"github.com/teamkoubyte/Koubyte-sub001/internal/middleware"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/orders"
	"github.com/teamkoubyte/Koubyte-sub001/internal/payments"
	"github.com/teamkoubyte/Koubyte-sub001/internal/quotes"
	"github.com/teamkoubyte/Koubyte-sub001/internal/reviews"
	"github.com/teamkoubyte/Koubyte-sub001/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gdb, err := db.Open(cfg)
	if err != nil {
		logger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("database connected", slog.String("driver", cfg.DBDriver))

	if err := models.AutoMigrate(gdb); err != nil {
		logger.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if cfg.RedisURL != "" {
			logger.Info("redis connected (url)")
		} else {
			logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		}
		cacheStore = redisCache
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			logger.Error("JWT_SECRET is required in production")
			os.Exit(1)
		}
		cfg.JWTSecret = "koubyte-dev-secret"
		logger.Warn("JWT_SECRET not set, using development secret")
	}
	jwtManager := &auth.Manager{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
		Issuer:     "koubyte",
	}

	var mail mailer.Mailer
	if brevo := mailer.NewBrevoClient(cfg.BrevoAPIKey, cfg.SenderEmail, cfg.SenderName, cfg.BrevoSandbox); brevo != nil {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.SenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
		mail = brevo
	} else {
		logger.Info("brevo mailer disabled")
		mail = mailer.NewLog(logger)
	}

	paymentProvider := "koubyte-pay"
	if cfg.PaymentSecretKey == "" {
		paymentProvider = "demo"
		logger.Info("payment provider running in demo mode")
	}

	val := validation.New()

	catalogRepo := catalog.NewRepository(gdb)
	catalogService := catalog.NewService(catalogRepo, cfg.Timezone)
	catalogHandler := catalog.NewHandler(catalogService, val, logger)

	discountRepo := discounts.NewRepository(gdb)
	discountService := discounts.NewService(discountRepo, cfg.Timezone)
	discountHandler := discounts.NewHandler(discountService, val, logger)

	appointmentRepo := appointments.NewRepository(gdb)
	appointmentService := appointments.NewService(appointmentRepo, cfg.Timezone)
	appointmentHandler := appointments.NewHandler(appointmentService, cacheStore, mail, val, logger)

	cartRepo := cart.NewRepository(gdb)
	cartService := cart.NewService(cartRepo, catalogRepo, cfg.Timezone)
	cartHandler := cart.NewHandler(cartService, val, logger)

	messageRepo := messages.NewRepository(gdb)
	messageService := messages.NewService(messageRepo, cfg.Timezone)
	messageHandler := messages.NewHandler(messageService, val, logger)

	orderRepo := orders.NewRepository(gdb)
	orderService := orders.NewService(orderRepo, cartRepo, catalogRepo, discountRepo, paymentProvider, cfg.Timezone)
	orderHandler := orders.NewHandler(orderService, mail, messageService, cfg.NotifyAdminEmail, val, logger)

	paymentRepo := payments.NewRepository(gdb)
	paymentService := payments.NewService(paymentRepo, cfg.PaymentSecretKey, cfg.Timezone)
	paymentHandler := payments.NewHandler(paymentService, mail, val, logger)

	reviewRepo := reviews.NewRepository(gdb)
	reviewService := reviews.NewService(reviewRepo, cfg.Timezone)
	reviewHandler := reviews.NewHandler(reviewService, val, logger)

	quoteRepo := quotes.NewRepository(gdb)
	quoteService := quotes.NewService(quoteRepo, cfg.Timezone)
	quoteHandler := quotes.NewHandler(quoteService, mail, cfg.NotifyAdminEmail, val, logger)

	blogRepo := blog.NewRepository(gdb)
	blogService := blog.NewService(blogRepo, cfg.Timezone)
	blogHandler := blog.NewHandler(blogService, val, logger)

	accountRepo := accounts.NewRepository(gdb)
	accountService := accounts.NewService(accountRepo, jwtManager, cfg.Timezone)
	accountHandler := accounts.NewHandler(accountService, mail, jwtManager, cfg.CookieSecure, val, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(middleware.Session(jwtManager))

	publicLimiter := middleware.NewRateLimiter(cfg.RateLimitPublic, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Route("/api", func(api chi.Router) {
		api.Get("/services", catalogHandler.List)
		api.Get("/services/{slug}", catalogHandler.GetBySlug)
		api.Get("/appointments/availability", appointmentHandler.Availability)
		api.With(publicLimiter.Middleware).Post("/appointments", appointmentHandler.Book)
		api.Get("/reviews", reviewHandler.List)
		api.With(publicLimiter.Middleware).Post("/reviews", reviewHandler.Create)
		api.With(publicLimiter.Middleware).Post("/quotes", quoteHandler.Submit)
		api.With(publicLimiter.Middleware).Post("/contact", messageHandler.SubmitContact)
		api.Get("/blog", blogHandler.List)
		api.Get("/blog/{slug}", blogHandler.GetBySlug)
		api.Post("/discounts/validate", discountHandler.Validate)
		api.With(publicLimiter.Middleware).Post("/orders/checkout", orderHandler.Checkout)
		api.Post("/payments/intent", paymentHandler.CreateIntent)
		api.Post("/payments/confirm", paymentHandler.Confirm)

		api.Route("/auth", func(ar chi.Router) {
			ar.Use(authLimiter.Middleware)
			ar.Post("/register", accountHandler.Register)
			ar.Post("/verify-email", accountHandler.VerifyEmail)
			ar.Post("/resend-verification", accountHandler.ResendVerification)
			ar.Post("/login", accountHandler.Login)
			ar.Post("/refresh", accountHandler.Refresh)
			ar.Post("/logout", accountHandler.Logout)
			ar.Post("/forgot-password", accountHandler.ForgotPassword)
			ar.Post("/reset-password", accountHandler.ResetPassword)
		})

		api.Group(func(private chi.Router) {
			private.Use(middleware.RequireAuth)
			private.Get("/me", accountHandler.Me)
			private.Put("/me", accountHandler.UpdateProfile)
			private.Post("/me/erase", accountHandler.Erase)
			private.Get("/cart", cartHandler.Get)
			private.Post("/cart", cartHandler.Add)
			private.Patch("/cart/{serviceId}", cartHandler.UpdateQuantity)
			private.Delete("/cart/{serviceId}", cartHandler.Remove)
			private.Delete("/cart", cartHandler.Clear)
			private.Get("/orders", orderHandler.ListMine)
			private.Get("/orders/{id}", orderHandler.Get)
			private.Get("/appointments", appointmentHandler.ListMine)
			private.Put("/reviews/{id}", reviewHandler.Update)
			private.Post("/chat", messageHandler.SendChat)
			private.Get("/chat", messageHandler.MyThread)
			private.Get("/notifications", messageHandler.Notifications)
			private.Patch("/notifications/{id}/read", messageHandler.MarkNotificationRead)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin)
			admin.Get("/services", catalogHandler.AdminList)
			admin.Post("/services", catalogHandler.AdminCreate)
			admin.Put("/services/{id}", catalogHandler.AdminUpdate)
			admin.Delete("/services/{id}", catalogHandler.AdminDelete)
			admin.Get("/appointments", appointmentHandler.AdminList)
			admin.Patch("/appointments/{id}/status", appointmentHandler.AdminUpdateStatus)
			admin.Get("/orders", orderHandler.AdminList)
			admin.Patch("/orders/{id}/status", orderHandler.AdminUpdateStatus)
			admin.Get("/payments", paymentHandler.AdminList)
			admin.Post("/payments/{id}/refund", paymentHandler.AdminRefund)
			admin.Get("/reviews", reviewHandler.AdminList)
			admin.Patch("/reviews/{id}/approve", reviewHandler.AdminApprove)
			admin.Delete("/reviews/{id}", reviewHandler.AdminDelete)
			admin.Get("/discounts", discountHandler.AdminList)
			admin.Post("/discounts", discountHandler.AdminCreate)
			admin.Put("/discounts/{id}", discountHandler.AdminUpdate)
			admin.Delete("/discounts/{id}", discountHandler.AdminDelete)
			admin.Get("/quotes", quoteHandler.AdminList)
			admin.Patch("/quotes/{id}/status", quoteHandler.AdminUpdateStatus)
			admin.Get("/contacts", messageHandler.AdminListContacts)
			admin.Patch("/contacts/{id}/status", messageHandler.AdminUpdateContactStatus)
			admin.Get("/chat/threads", messageHandler.AdminListThreads)
			admin.Get("/chat/threads/{userId}", messageHandler.AdminThread)
			admin.Post("/chat/threads/{userId}", messageHandler.AdminReply)
			admin.Get("/blog", blogHandler.AdminList)
			admin.Post("/blog", blogHandler.AdminCreate)
			admin.Put("/blog/{id}", blogHandler.AdminUpdate)
			admin.Patch("/blog/{id}/publish", blogHandler.AdminSetPublished)
			admin.Delete("/blog/{id}", blogHandler.AdminDelete)
			admin.Get("/users", accountHandler.AdminListUsers)
			admin.Post("/users", accountHandler.AdminCreateUser)
			admin.Patch("/users/{id}/role", accountHandler.AdminSetRole)
			admin.Delete("/users/{id}", accountHandler.AdminDeleteUser)
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
