package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/AlibekovAA/membership/api/membership"
	commonerrors "github.com/AlibekovAA/membership/internal/common/errors"
	commonhttp "github.com/AlibekovAA/membership/internal/common/http"
	"github.com/AlibekovAA/membership/internal/common/jwtverify"
	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/membership/domain"
	"github.com/AlibekovAA/membership/internal/membership/service"
	"github.com/AlibekovAA/membership/internal/membership/token"
)

type MembershipService interface {
	Register(ctx context.Context, input service.RegisterInput) error
	Login(ctx context.Context, input service.LoginInput) (string, error)
	Profile(ctx context.Context, email string) (domain.Profile, error)
	UpdateProfile(ctx context.Context, email string, input service.ProfileUpdateInput) (domain.Profile, error)
	RefreshToken(ctx context.Context, email string) (string, error)
}

type TokenValidator interface {
	Validate(raw string) (token.Claims, error)
}

type Config struct {
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
}

type Handler struct {
	svc       MembershipService
	validator *requestValidator
	errors    *commonhttp.ErrorHandler
	log       *logger.Logger
}

// NewHandler builds the chi router serving the membership API, health and
// swagger endpoints.
//
//	@title						Membership API
//	@version					1.0.0
//	@description				Registration, password login, bearer tokens and profile management.
//
//	@BasePath					/
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT bearer token. Format: "Bearer {token}".
func NewHandler(svc MembershipService, tokens TokenValidator, cfg Config, log *logger.Logger) http.Handler {
	h := &Handler{
		svc:       svc,
		validator: newRequestValidator(),
		errors:    commonhttp.NewErrorHandler(log),
		log:       log,
	}

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.errors.HandleError(w, r, commonerrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.errors.HandleError(w, r, commonerrors.ErrMethodNotAllowed)
	})

	r.Get("/health", commonhttp.HealthHandler(log))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(commonhttp.WithTimeout(cfg.RequestTimeout))

		r.Post("/registration", h.register)
		r.Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(jwtverify.Middleware(validatorFor(tokens), log))
			r.Get("/profile", h.profile)
			r.Put("/profile/update", h.updateProfile)
			r.Post("/token/refresh", h.refreshToken)
		})
	})

	return r
}

func validatorFor(tokens TokenValidator) jwtverify.Validator {
	return jwtverify.ValidatorFunc(func(raw string) (jwtverify.Identity, error) {
		claims, err := tokens.Validate(raw)
		if err != nil {
			return jwtverify.Identity{}, err
		}
		return jwtverify.Identity{
			Subject: claims.Subject,
			Email:   claims.Email,
			Groups:  claims.Groups,
		}, nil
	})
}

// register creates a new member account.
//
//	@Summary		Register a new user
//	@Tags			Membership
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	envelope		"User registered successfully"
//	@Failure		400		{object}	envelope		"Validation failed or email already registered"
//	@Failure		500		{object}	envelope		"Registration failed"
//	@Router			/api/v1/registration [post]
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeAndValidate(w, r, &req, req.normalize) {
		return
	}

	err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusCreated, "User registered successfully", nil)
}

// login exchanges credentials for a bearer token.
//
//	@Summary		Log in
//	@Tags			Membership
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	tokenEnvelope	"login successful"
//	@Failure		400		{object}	envelope		"Validation failed"
//	@Failure		401		{object}	envelope		"Invalid email or password"
//	@Failure		500		{object}	envelope		"Login failed"
//	@Router			/api/v1/login [post]
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req, req.normalize) {
		return
	}

	tok, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, "login successful", tokenResponse{Token: tok})
}

// profile returns the authenticated member's profile.
//
//	@Summary		Get profile
//	@Tags			Membership
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	profileEnvelope	"successful"
//	@Failure		401	{object}	envelope		"Invalid token"
//	@Failure		404	{object}	envelope		"User not found"
//	@Failure		500	{object}	envelope		"Failed to get profile"
//	@Router			/api/v1/profile [get]
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	email, ok := jwtverify.SubjectFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidToken)
		return
	}

	profile, err := h.svc.Profile(r.Context(), email)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, "successful", profile)
}

// updateProfile changes the authenticated member's names.
//
//	@Summary		Update profile
//	@Tags			Membership
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		updateProfileRequest	true	"New names"
//	@Success		200		{object}	profileEnvelope			"Profile updated successfully"
//	@Failure		400		{object}	envelope				"Validation failed"
//	@Failure		401		{object}	envelope				"Invalid token"
//	@Failure		404		{object}	envelope				"User not found"
//	@Failure		500		{object}	envelope				"Failed to update profile"
//	@Router			/api/v1/profile/update [put]
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := jwtverify.SubjectFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidToken)
		return
	}

	var req updateProfileRequest
	if !h.decodeAndValidate(w, r, &req, req.normalize) {
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), email, service.ProfileUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, "Profile updated successfully", profile)
}

// refreshToken issues a new token with a fresh validity window.
//
//	@Summary		Refresh token
//	@Tags			Membership
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tokenEnvelope	"token refreshed"
//	@Failure		401	{object}	envelope		"Invalid token"
//	@Failure		404	{object}	envelope		"User not found"
//	@Router			/api/v1/token/refresh [post]
func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	email, ok := jwtverify.SubjectFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidToken)
		return
	}

	tok, err := h.svc.RefreshToken(r.Context(), email)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteSuccess(w, http.StatusOK, "token refreshed", tokenResponse{Token: tok})
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any, normalize func()) bool {
	if err := commonhttp.DecodeJSON(r, req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action":    "invalid_request_body",
			"path":      r.URL.Path,
			"remote_ip": commonhttp.GetClientIP(r),
		}).Warnf("invalid request body: %v", err)
		h.errors.HandleError(w, r, err)
		return false
	}

	normalize()

	if err := h.validator.Struct(req); err != nil {
		h.errors.HandleError(w, r, err)
		return false
	}
	return true
}
