package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/empdir/emp-api/internal/config"
	"github.com/empdir/emp-api/internal/db"
	"github.com/empdir/emp-api/internal/es"
	"github.com/empdir/emp-api/internal/handlers"
	"github.com/empdir/emp-api/internal/logging"
	"github.com/empdir/emp-api/internal/middleware/loggingmw"
	"github.com/empdir/emp-api/internal/mykafka"
	"github.com/empdir/emp-api/internal/repo"
	"github.com/empdir/emp-api/internal/revocation"
	"github.com/empdir/emp-api/internal/service"
	"github.com/empdir/emp-api/internal/tokens"
	httpserver "github.com/empdir/emp-api/internal/transport/http"
)

const employeeIndex = "employees"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// No signing key means no way to issue or validate tokens. Refuse to
	// start rather than fall back to something insecure.
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(configuration.JWT_ISSUER, "JWT_ISSUER")
	config.MustNonEmpty(configuration.JWT_AUDIENCE, "JWT_AUDIENCE")

	logger := logging.New(configuration.LOG_LEVEL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}
	if err := db.Seed(gormDB); err != nil {
		log.Fatalf("db seed error: %v", err)
	}

	codec := tokens.NewCodec(
		[]byte(configuration.JWT_SECRET),
		configuration.JWT_ISSUER,
		configuration.JWT_AUDIENCE,
		configuration.TokenTTL(),
	)

	registry := revocation.New()
	go registry.PruneLoop(ctx, 10*time.Minute)

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		log.Println("Notice: KAFKA_ADDRESS not set, event publishing disabled")
		producer = &mykafka.Producer{}
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
	} else {
		log.Println("Notice: ES_URL not set, employee search disabled")
	}

	gormRepo := repo.New(gormDB)
	authService := &service.AuthService{Repo: gormRepo, Codec: codec}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		Codec:             codec,
		Registry:          registry,
		AuthHandler:       &handlers.AuthHandler{Service: authService, Registry: registry, Producer: producer},
		UserHandler:       &handlers.UserHandler{Service: authService, Producer: producer},
		DepartmentHandler: &handlers.DepartmentHandler{Repo: gormRepo},
		EmployeeHandler:   &handlers.EmployeeHandler{Repo: gormRepo, Producer: producer, ES: esClient, Index: employeeIndex},
	}
	if esClient != nil {
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: employeeIndex}
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
