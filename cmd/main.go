package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/barberly/booking-engine/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/barberly/booking-engine/internal/api/handlers/confirm_booking"
	confirmPaymentHandler "github.com/barberly/booking-engine/internal/api/handlers/confirm_payment"
	createBookingHandler "github.com/barberly/booking-engine/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/barberly/booking-engine/internal/api/handlers/get_available_slots"
	getBarberBookingsHandler "github.com/barberly/booking-engine/internal/api/handlers/get_barber_bookings"
	getBookingHandler "github.com/barberly/booking-engine/internal/api/handlers/get_booking"
	getScheduleHandler "github.com/barberly/booking-engine/internal/api/handlers/get_schedule"
	updateScheduleHandler "github.com/barberly/booking-engine/internal/api/handlers/update_schedule"
	"github.com/barberly/booking-engine/internal/api/middleware"
	"github.com/barberly/booking-engine/internal/config"
	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/infra/events"
	"github.com/barberly/booking-engine/internal/infra/locker"
	bookingRepo "github.com/barberly/booking-engine/internal/infra/storage/booking"
	catalogRepo "github.com/barberly/booking-engine/internal/infra/storage/catalog"
	"github.com/barberly/booking-engine/internal/infra/storage/memory"
	scheduleRepo "github.com/barberly/booking-engine/internal/infra/storage/schedule"
	bookingsService "github.com/barberly/booking-engine/internal/service/bookings"
	schedulesService "github.com/barberly/booking-engine/internal/service/schedules"
	createBookingUC "github.com/barberly/booking-engine/internal/usecase/create_booking"
	expirePaymentsUC "github.com/barberly/booking-engine/internal/usecase/expire_payments"
	getAvailableSlotsUC "github.com/barberly/booking-engine/internal/usecase/get_available_slots"
	"github.com/barberly/booking-engine/internal/worker/expiration"
	"github.com/barberly/booking-engine/pkg/logger"
	"github.com/barberly/booking-engine/pkg/metrics"
	"github.com/barberly/booking-engine/pkg/txmanager"
)

// storage набор репозиториев и менеджер транзакций выбранного драйвера БД
type storage struct {
	bookings interface {
		createBookingUC.BookingRepository
		bookingsService.BookingRepository
		expirePaymentsUC.BookingRepository
	}
	schedules interface {
		createBookingUC.ScheduleRepository
		schedulesService.ScheduleRepository
	}
	catalog interface {
		createBookingUC.CatalogRepository
		schedulesService.CatalogRepository
	}
	tx interface {
		createBookingUC.TransactionManager
		schedulesService.TransactionManager
	}
	close func() error
}

// publisher шина событий бронирований
type publisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
	Close() error
}

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting booking-engine...")
	log.Info("Configuration loaded from %s", *configPath)

	policy, err := cfg.Booking.Policy()
	if err != nil {
		log.Fatal("Invalid booking policy: %v", err)
	}
	log.Info("Booking policy: granularity=%dm, grace=%s, min_notice=%dm, deferred=%v, tz=%s",
		policy.SlotGranularityMinutes, policy.PaymentGracePeriod, policy.MinNoticeMinutes,
		policy.DeferredPaymentMethods, policy.Location)

	// Метрики собираются всегда; наружу отдаются только если включены
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	} else {
		metricsCollector = metrics.NewWithRegisterer(cfg.Metrics.ServiceName, prometheus.NewRegistry())
	}

	// Хранилище
	store, err := newStorage(cfg, metricsCollector, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Блокировка (барбер, день)
	bookingLocker, err := newLocker(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize locker: %v", err)
	}

	// Шина событий
	eventPublisher, err := newPublisher(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize event publisher: %v", err)
	}
	defer eventPublisher.Close()

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		store.bookings,
		store.tx,
		eventPublisher,
		metricsCollector,
		log,
	)
	scheduleSvc := schedulesService.NewService(
		store.schedules,
		store.catalog,
		store.tx,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.bookings,
		store.schedules,
		store.catalog,
		store.tx,
		bookingLocker,
		eventPublisher,
		metricsCollector,
		policy,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.bookings,
		store.schedules,
		store.catalog,
		policy,
		log,
	)

	expirePaymentsUseCase := expirePaymentsUC.NewUseCase(
		store.bookings,
		bookingSvc,
		metricsCollector,
		cfg.Worker.BatchSize,
		log,
	)

	// Наблюдатель оплаты
	var worker *expiration.Worker
	if cfg.Worker.Enabled {
		worker, err = expiration.NewWorker(
			expirePaymentsUseCase,
			time.Duration(cfg.Worker.SweepIntervalSeconds)*time.Second,
			time.Duration(cfg.Worker.SweepTimeoutSeconds)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize expiration worker: %v", err)
		}
	}

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, policy, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, policy, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	confirmPayment := confirmPaymentHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getBarberBookings := getBarberBookingsHandler.NewHandler(bookingSvc, policy, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Витрина ---
	// Доступные слоты барбера на дату
	api.HandleFunc("/barbers/{barberId}/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Создание бронирования (с ограничением частоты)
	create := api.PathPrefix("/bookings").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst,
			cfg.RateLimit.TrustProxy, log)
		go limiter.Run(ctx)
		create.Use(limiter.Middleware())
		log.Info("Rate limit for booking creation: %d/min, burst=%d, trust_proxy=%v",
			cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy)
	}
	create.HandleFunc("", createBooking.Handle).Methods(http.MethodPost)

	// Бронирование и переходы статуса
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/confirm-payment", confirmPayment.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Админка ---
	// Реестр бронирований барбера за день
	api.HandleFunc("/barbers/{barberId}/bookings", getBarberBookings.Handle).Methods(http.MethodGet)

	// Недельное расписание барбера
	api.HandleFunc("/barbers/{barberId}/schedule/{weekday}", getSchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/barbers/{barberId}/schedule/{weekday}", updateSchedule.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	if worker != nil {
		worker.Start(ctx)
		log.Info("Payment expiration worker started (interval=%ds, batch=%d)",
			cfg.Worker.SweepIntervalSeconds, cfg.Worker.BatchSize)
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if worker != nil {
		if err := worker.Stop(shutdownCtx); err != nil {
			log.Error("Expiration worker did not stop in time: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
}

func newStorage(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		store := memory.NewStore()
		log.Warn("Using in-memory storage: data is lost on restart")
		return &storage{
			bookings:  store,
			schedules: store,
			catalog:   store,
			tx:        store,
			close:     func() error { return nil },
		}, nil
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Metrics.Enabled {
		m.RegisterDBStats(db, cfg.Database.DBName)
		log.Info("Database pool metrics registered")
	}

	return &storage{
		bookings:  bookingRepo.NewRepository(db),
		schedules: scheduleRepo.NewRepository(db),
		catalog:   catalogRepo.NewRepository(db),
		tx:        txmanager.NewTransactionManager(db),
		close:     db.Close,
	}, nil
}

func newLocker(cfg *config.Config, log *logger.Logger) (createBookingUC.Locker, error) {
	switch cfg.Locker.Driver {
	case config.DriverRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}

		log.Info("Using redis locker (addrs=%v)", cfg.Redis.Addrs)
		return locker.NewRedisLocker(
			client,
			time.Duration(cfg.Locker.TTLMillis)*time.Millisecond,
			time.Duration(cfg.Locker.RetryMillis)*time.Millisecond,
			time.Duration(cfg.Locker.WaitTimeoutMs)*time.Millisecond,
			log,
		), nil
	case config.DriverNone:
		log.Warn("Locker disabled: relying on serializable transactions only")
		return locker.NopLocker{}, nil
	default:
		log.Info("Using in-process locker")
		return locker.NewMemoryLocker(), nil
	}
}

func newPublisher(cfg *config.Config, log *logger.Logger) (publisher, error) {
	switch cfg.Events.Driver {
	case config.DriverKafka:
		return events.NewKafkaPublisher(events.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			MaxAttempts:  cfg.Kafka.MaxAttempts,
			BatchTimeout: time.Duration(cfg.Kafka.BatchTimeoutMs) * time.Millisecond,
		}, log)
	case config.DriverRabbitMQ:
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		log.Info("Publishing events to rabbitmq exchange %s", cfg.RabbitMQ.Exchange)
		return p, nil
	default:
		broker := events.NewBroker()
		ch, _ := broker.Subscribe()
		go func() {
			for e := range ch {
				log.Info("Event %s: booking=%d status=%s", e.Type, e.BookingID, e.Status)
			}
		}()
		log.Info("Using in-process event broker")
		return broker, nil
	}
}
