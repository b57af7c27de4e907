package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-places-api/internal/application/auth"
	"github.com/go-places-api/internal/application/place"
	"github.com/go-places-api/internal/application/user"
	"github.com/go-places-api/internal/config"
	"github.com/go-places-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-places-api/internal/infrastructure/jwt"
	s3infra "github.com/go-places-api/internal/infrastructure/s3"
	"github.com/go-places-api/internal/infrastructure/smtp"
	"github.com/go-places-api/internal/transport/http/handler"
	appmiddleware "github.com/go-places-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo   *dynamo.UserRepo
	OTPRepo    *dynamo.OTPRepo
	PlaceRepo  *dynamo.PlaceRepo
	RatingRepo *dynamo.RatingRepo
	SavedRepo  *dynamo.SavedPlaceRepo
	S3Store    *s3infra.Store
	Mailer     smtp.Mailer
	Tokens     *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		OTPRepo:     deps.OTPRepo,
		Tokens:      deps.Tokens,
		Mailer:      deps.Mailer,
		AdminSecret: cfg.AdminSecret,
		OTPTTL:      cfg.OTPExpiry,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		PlaceRepo:   deps.PlaceRepo,
		SavedRepo:   deps.SavedRepo,
		ObjectStore: deps.S3Store,
	})
	placeSvc := place.NewService(place.ServiceDeps{
		PlaceRepo:   deps.PlaceRepo,
		RatingRepo:  deps.RatingRepo,
		ObjectStore: deps.S3Store,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc, authSvc)
	placeH := handler.NewPlaceHandler(placeSvc)

	authMw := appmiddleware.Auth(authSvc)
	adminMw := appmiddleware.RequireAdminOrSecret(authSvc)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/send-otp", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/auth/forgot-password", authH.ForgotPassword)
		r.Post("/auth/register/verify-otp", authH.VerifyOTP)
		r.Post("/auth/reset-password", authH.ResetPassword)

		r.Get("/places", placeH.List)
		r.Get("/places/{id}", placeH.Get)
		r.Get("/places/{id}/image", placeH.Image)
		r.Get("/places/{id}/ratings", placeH.Ratings)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", userH.Me)
			r.Put("/auth/me", userH.UpdateMe)
			r.Get("/auth/me/photo", userH.MyPhoto)
			r.Put("/auth/me/photo", userH.UpdateMyPhoto)
			r.Post("/auth/me/change-email", authH.ChangeEmail)

			r.Post("/places/{id}/rate", placeH.Rate)
			r.Post("/users/save/{placeID}", userH.SavePlace)
			r.Delete("/users/unsave/{placeID}", userH.UnsavePlace)
			r.Get("/users/saved", userH.ListSaved)
			r.Get("/users/me/ratings", placeH.MyRatings)

			// Admin-or-secret routes
			r.Group(func(r chi.Router) {
				r.Use(adminMw)

				r.Get("/users", userH.List)
				r.Get("/users/{id}", userH.Get)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/places", placeH.Create)
				r.Put("/places/{id}", placeH.Update)
				r.Put("/places/{id}/image", placeH.UpdateImage)
				r.Delete("/places/{id}", placeH.Delete)
			})
		})
	})

	return r
}
