package http

import (
	"net/http"
	"time"

	"github.com/bestworkers-api/internal/application/account"
	"github.com/bestworkers-api/internal/application/profile"
	"github.com/bestworkers-api/internal/application/registration"
	"github.com/bestworkers-api/internal/config"
	jwtinfra "github.com/bestworkers-api/internal/infrastructure/jwt"
	"github.com/bestworkers-api/internal/pkg/otp"
	"github.com/bestworkers-api/internal/pkg/pin"
	"github.com/bestworkers-api/internal/transport/http/handler"
	appmiddleware "github.com/bestworkers-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
// SMSSender may be nil; activation texts are then skipped.
type Deps struct {
	Accounts     AccountRepository
	OTPs         OTPRepository
	Profiles     ProfileRepository
	Mailer       Mailer
	SMSSender    SMSSender
	JWTProvider  *jwtinfra.Provider
	OTPGenerator *otp.Generator
	Hasher       pin.Hasher
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, per client IP on the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10, cfg.TrustedProxyHops)

	regDeps := registration.ServiceDeps{
		Accounts:       deps.Accounts,
		OTPs:           deps.OTPs,
		Generator:      deps.OTPGenerator,
		Hasher:         deps.Hasher,
		Mailer:         deps.Mailer,
		Issuer:         deps.JWTProvider,
		OTPTTL:         cfg.OTPTTL,
		SMSCountryCode: cfg.SMSCountryCode,
	}
	if deps.SMSSender != nil {
		regDeps.SMSSender = deps.SMSSender
	}
	regSvc := registration.NewService(regDeps)
	accountSvc := account.NewService(account.ServiceDeps{
		Accounts: deps.Accounts,
		Profiles: deps.Profiles,
		Hasher:   deps.Hasher,
	})
	profileSvc := profile.NewService(profile.ServiceDeps{
		Profiles: deps.Profiles,
		Accounts: deps.Accounts,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(regSvc, accountSvc)
	accountH := handler.NewAccountHandler(accountSvc)
	profileH := handler.NewProfileHandler(profileSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/auth/register", authH.Register)
			r.Post("/auth/verify-otp", authH.VerifyOTP)
			r.Post("/auth/resend-otp", authH.ResendOTP)
			r.Post("/auth/login", authH.Login)
		})
		r.Get("/professions", profileH.Search)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)
			r.Put("/users/me", accountH.Update)
			r.Put("/users/me/pin", accountH.ChangePin)
			r.Post("/professions", profileH.Create)
			r.Put("/professions/me", profileH.UpdateOwn)
		})
	})

	return r
}
