package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/cinemahub/reservation-system/internal/booking"
	"github.com/cinemahub/reservation-system/internal/domain"
	"github.com/cinemahub/reservation-system/internal/queue"
	"github.com/cinemahub/reservation-system/internal/repository"
	"github.com/cinemahub/reservation-system/internal/scheduling"
	appvalidator "github.com/cinemahub/reservation-system/internal/validator"
	"github.com/cinemahub/reservation-system/internal/vcs"
)

const serviceName = "cinemahub-reservation-api"

var (
	version = vcs.Version()
)

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	AmqpUrl          string
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate

	hallRepo        domain.HallRepository
	movieRepo       domain.MovieRepository
	showtimeRepo    domain.ShowtimeRepository
	reservationRepo domain.ReservationRepository

	scheduleValidator *scheduling.Validator
	engine            *booking.Engine
	capacity          *booking.Tracker
	publisher         *queue.Publisher

	reservationsCreated metric.Int64Counter

	wg sync.WaitGroup
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL (empty disables the availability cache)")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.AmqpUrl, "amqp-url", "", "RabbitMQ URL (empty disables event publishing)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	app, err := New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.serve()
}

func New(cfg Config) (*Application, error) {
	logger := newLogger(cfg)

	db, err := newDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	hallRepo := repository.NewPostgresHallRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)

	app := &Application{
		config:            cfg,
		logger:            logger,
		db:                db,
		validator:         appvalidator.NewValidator(),
		hallRepo:          hallRepo,
		movieRepo:         movieRepo,
		showtimeRepo:      showtimeRepo,
		reservationRepo:   reservationRepo,
		scheduleValidator: scheduling.NewValidator(),
		engine:            booking.NewEngine(showtimeRepo, hallRepo, reservationRepo),
		capacity:          booking.NewTracker(showtimeRepo, hallRepo, reservationRepo),
		publisher:         queue.NewPublisher(cfg.AmqpUrl, logger),
	}

	if redisClient != nil {
		app.redis = redisClient
	}

	meter := otel.Meter(serviceName)

	app.reservationsCreated, err = meter.Int64Counter(
		"reservations.created",
		metric.WithDescription("Number of successfully created reservations"),
	)
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

func (app *Application) Close() {
	if app.redis != nil {
		app.redis.Close()
	}
	app.db.Close()
}

func newLogger(cfg Config) *slog.Logger {
	textHandler := slog.NewTextHandler(os.Stdout, nil)

	if cfg.OtelCollectorUrl == "" {
		return slog.New(textHandler)
	}

	return slog.New(NewMultiHandler(textHandler, otelslog.NewHandler(serviceName)))
}

func newDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func newRedisClient(cfg Config) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := redisotel.InstrumentTracing(rdb)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

// background runs fn in its own goroutine, tracked so graceful
// shutdown can wait for in-flight work.
func (app *Application) background(fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				app.logger.Error("background task panicked", "error", fmt.Sprintf("%s", err))
			}
		}()

		fn()
	}()
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)

	r.Get("/healthcheck", app.GetHealth)

	r.Route("/halls", func(r chi.Router) {
		r.Post("/", app.CreateHallHandler)

		r.Route("/{hallId}", func(r chi.Router) {
			r.Delete("/", app.DeleteHallHandler)
			r.Get("/seats", app.GetHallSeatChartHandler)
			r.Get("/showtimes", app.GetHallScheduleHandler)
		})
	})

	r.Post("/movies", app.CreateMovieHandler)

	r.Route("/showtimes", func(r chi.Router) {
		r.Post("/", app.CreateShowtimeHandler)

		r.Route("/{showtimeId}", func(r chi.Router) {
			r.Patch("/", app.UpdateShowtimeHandler)
			r.Get("/capacity", app.GetShowtimeCapacityHandler)
			r.Post("/reservations", app.CreateReservationHandler)
		})
	})

	r.Patch("/reservations/{reservationId}", app.UpdateReservationStatusHandler)

	return r
}
