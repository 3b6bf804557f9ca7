package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reserva/internal/auth"
	"reserva/internal/mailer"
	"reserva/internal/ratelimiter"
	"reserva/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	frontendURL string
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	resetExp  time.Duration
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(app.RateLimiterMiddleware)

	// Request context deadline; handlers observe ctx.Done() through the store
	r.Use(middleware.Timeout(60 * time.Second))

	r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
	r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

	// Public auth routes
	r.Post("/login", app.loginHandler)
	r.Post("/register", app.registerUserHandler)
	r.Post("/forgot-password", app.forgotPasswordHandler)
	r.Post("/reset-password", app.resetPasswordHandler)

	r.Group(func(r chi.Router) {
		r.Use(app.AuthTokenMiddleware)

		// Any authenticated caller can log out
		r.Post("/logout", app.logoutHandler)

		// The current-user endpoint sits behind the admin gate
		r.With(app.RequireRole(store.RoleAdmin)).Get("/user", app.currentUserHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.RequireRole(store.RoleAdmin))

			r.Route("/businesses", func(r chi.Router) {
				r.Get("/", app.adminListBusinessesHandler)
				r.Post("/", app.adminCreateBusinessHandler)
				r.Get("/{businessID}", app.adminGetBusinessHandler)
				r.Put("/{businessID}", app.adminUpdateBusinessHandler)
				r.Delete("/{businessID}", app.adminDeleteBusinessHandler)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", app.adminListUsersHandler)
				r.Post("/", app.adminCreateUserHandler)
				r.Get("/{userID}", app.adminGetUserHandler)
				r.Put("/{userID}", app.adminUpdateUserHandler)
				r.Delete("/{userID}", app.adminDeleteUserHandler)
			})
		})

		r.Route("/business/services", func(r chi.Router) {
			r.Use(app.RequireRole(store.RoleBusiness))

			r.Get("/", app.listServicesHandler)
			r.Post("/", app.createServiceHandler)
			r.Get("/{serviceID}", app.getServiceHandler)
			r.Put("/{serviceID}", app.updateServiceHandler)
			r.Delete("/{serviceID}", app.deleteServiceHandler)
		})

		r.Route("/user/bookings", func(r chi.Router) {
			r.Use(app.RequireRole(store.RoleUser))

			r.Get("/", app.listBookingsHandler)
			r.Post("/", app.createBookingHandler)
			r.Get("/{bookingID}", app.getBookingHandler)
			r.Put("/{bookingID}", app.updateBookingHandler)
			r.Delete("/{bookingID}", app.deleteBookingHandler)
		})

		r.Route("/user/reviews", func(r chi.Router) {
			r.Use(app.RequireRole(store.RoleUser))

			r.Get("/", app.listReviewsHandler)
			r.Post("/", app.createReviewHandler)
			r.Get("/business/{businessID}", app.listBusinessReviewsHandler)
			r.Get("/{reviewID}", app.getReviewHandler)
			r.Put("/{reviewID}", app.updateReviewHandler)
			r.Delete("/{reviewID}", app.deleteReviewHandler)
		})

		r.With(app.RequireRole(store.RoleUser)).Get("/user/businesses", app.listBusinessesHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
