package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/db"
	"github.com/2beens/gymlog/internal/gym/catalog"
	"github.com/2beens/gymlog/internal/gym/routines"
	"github.com/2beens/gymlog/internal/gym/workouts"
	"github.com/2beens/gymlog/internal/imagestore"
	"github.com/2beens/gymlog/internal/middleware"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/users"
	"github.com/2beens/gymlog/pkg"
)

const sessionCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	imageStore  imagestore.Store
	redisClient *redis.Client
	authService *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()

	cancelBackground context.CancelFunc
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if params.Config.AutoMigrate {
		if err := db.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrate db: %w", err)
		}
		log.Debugln("db schema applied")
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("gymlog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymlog-backend", rdb)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	imageStore, err := newImageStore(ctx, params.Config)
	if err != nil {
		otelShutdown()
		dbPool.Close()
		return nil, fmt.Errorf("new image store: %w", err)
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		imageStore:  imageStore,
		versionInfo: params.VersionInfo,

		redisClient: rdb,
		authService: auth.NewAuthService(params.Config.SessionTTL.Duration, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (imagestore.Store, error) {
	if cfg.ImagesBackend == config.ImagesBackendGCS {
		bucketStore, err := imagestore.NewBucketStore(ctx, cfg.ImagesBucket)
		if err != nil {
			return nil, err
		}
		return bucketStore, nil
	}

	diskStore, err := imagestore.NewDiskStore(cfg.ImagesRootPath)
	if err != nil {
		return nil, err
	}
	return diskStore, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/", s.handleRoot).Methods("GET", "OPTIONS").Name("root")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	usersRepo := users.NewRepo(s.dbPool)
	authHandler := users.NewAuthHandler(usersRepo, s.authService, s.metricsManager)
	authHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin)

	usersHandler := users.NewHandler(usersRepo)
	r.HandleFunc("/users", usersHandler.HandleList).Methods("GET", "OPTIONS").Name("list-users")
	r.HandleFunc("/users/me", usersHandler.HandleGetMe).Methods("GET", "OPTIONS").Name("get-me")
	r.HandleFunc("/users/me", usersHandler.HandleUpdateMe).Methods("PUT", "OPTIONS").Name("update-me")
	r.HandleFunc("/users/{username}", usersHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-user")
	r.HandleFunc("/users/{username}", usersHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-user")

	catalogHandler := catalog.NewHandler(catalog.NewRepo(s.dbPool), s.imageStore)
	r.HandleFunc("/exercises", catalogHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/{id}", catalogHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/exercises/{id}/image/{variant}", catalogHandler.HandleGetImage).Methods("GET", "OPTIONS").Name("get-exercise-image")

	routinesHandler := routines.NewHandler(routines.NewRepo(s.dbPool), s.metricsManager)
	r.HandleFunc("/routines", routinesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-routines")
	r.HandleFunc("/routines", routinesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-routine")
	r.HandleFunc("/routines/{id}", routinesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-routine")
	r.HandleFunc("/routines/{id}", routinesHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-routine")
	r.HandleFunc("/routines/{id}", routinesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-routine")

	workoutsRepo := workouts.NewRepo(s.dbPool)
	workoutsHandler := workouts.NewHandler(workoutsRepo, s.metricsManager)
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", workoutsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-workout")

	setLogsHandler := workouts.NewSetLogsHandler(workoutsRepo, s.metricsManager)
	setsRouter := r.PathPrefix("/workouts/{id}/exercises/{order:[0-9]+}/sets").Subrouter()
	setsRouter.HandleFunc("", setLogsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-set-logs")
	setsRouter.HandleFunc("", setLogsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-set-log")
	setsRouter.HandleFunc("/{setId}", setLogsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-set-log")
	setsRouter.HandleFunc("/{setId}", setLogsHandler.HandleUpdate).Methods("PUT", "PATCH", "OPTIONS").Name("update-set-log")
	setsRouter.HandleFunc("/{setId}", setLogsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-set-log")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server [%s] listening on: [%s]", s.versionInfo, ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	bgCtx, cancel := context.WithCancel(ctx)
	s.cancelBackground = cancel
	go s.authService.RunCleanup(bgCtx, sessionCleanupInterval)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.cancelBackground != nil {
		s.cancelBackground()
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if closer, ok := s.imageStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Errorf("failed to close image store: %s", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
