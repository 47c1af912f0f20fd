package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/gymlog/internal/middleware"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=auth_handler_mocks_test.go -package=users_test

type accountsRepo interface {
	Create(ctx context.Context, username, passwordHash, name string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type sessionService interface {
	Login(ctx context.Context, userID uuid.UUID) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type AuthHandler struct {
	repo           accountsRepo
	sessions       sessionService
	metricsManager *metrics.Manager
}

func NewAuthHandler(repo accountsRepo, sessions sessionService, metricsManager *metrics.Manager) *AuthHandler {
	return &AuthHandler{
		repo:           repo,
		sessions:       sessions,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers /a/signup, /a/login and /a/logout; signup and login are rate limited per client IP.
func (handler *AuthHandler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	authRouter := mainRouter.PathPrefix("/a").Subrouter()
	authRouter.HandleFunc("/logout", handler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")

	limitedRouter := authRouter.NewRoute().Subrouter()
	limitedRouter.HandleFunc("/signup", handler.HandleSignup).Methods("POST", "OPTIONS").Name("signup")
	limitedRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	limitedRouter.Use(middleware.RateLimit(rateLimiter, "login", allowedPerMin, handler.metricsManager))
}

func (handler *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.signup")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}
	if !pkg.HasJSONBody(r) {
		http.Error(w, "invalid content type", http.StatusUnsupportedMediaType)
		return
	}

	var input SignupInput
	if errs := validation.DecodeJSON(r.Body, &input); errs != nil {
		validation.WriteResponse(w, errs)
		return
	}
	if errs := input.Validate(); errs != nil {
		validation.WriteResponse(w, errs)
		return
	}

	passwordHash, err := pkg.HashPassword(input.Password)
	if err != nil {
		log.Errorf("signup, hash password: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.Create(ctx, input.Username, passwordHash, input.Name)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			validation.WriteResponse(w, validation.Errors{
				"username": {"A user with that username already exists."},
			})
			return
		}
		log.Errorf("signup, create user: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user signed up: %s", user.ID)
	if err := pkg.WriteJSON(w, user.View(), http.StatusCreated); err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "failed to marshal user", http.StatusInternalServerError)
	}
}

func (handler *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var loginReq LoginInput
	if pkg.HasJSONBody(r) {
		if errs := validation.DecodeJSON(r.Body, &loginReq); errs != nil {
			validation.WriteResponse(w, errs)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusBadRequest)
			return
		}
		loginReq = LoginInput{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}
	if errs := loginReq.Validate(); errs != nil {
		validation.WriteResponse(w, errs)
		return
	}

	user, err := handler.repo.GetByUsername(ctx, loginReq.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[username] failed login attempt for user: %s", loginReq.Username)
			handler.metricsManager.LoginAttempt(metrics.OutcomeInvalid)
			http.Error(w, "error, wrong credentials", http.StatusBadRequest)
			return
		}
		handler.metricsManager.LoginAttempt(metrics.OutcomeError)
		log.Errorf("login failed, get user: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", loginReq.Username)
		handler.metricsManager.LoginAttempt(metrics.OutcomeInvalid)
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID)
	if err != nil {
		handler.metricsManager.LoginAttempt(metrics.OutcomeError)
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.LoginAttempt(metrics.OutcomeOK)
	log.Trace("new login success")
	if err := pkg.WriteJSON(w, map[string]string{"token": token}, http.StatusOK); err != nil {
		log.Errorf("marshal token: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
	}
}

func (handler *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	token := middleware.BearerToken(r)
	if token == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.sessions.Logout(ctx, token)
	if err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}
