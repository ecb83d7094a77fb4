package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/opengemeente/klantsync/internal/application"
	"github.com/opengemeente/klantsync/internal/config"
	"github.com/opengemeente/klantsync/internal/infrastructure/objecten"
	"github.com/opengemeente/klantsync/internal/infrastructure/openklant"
	"github.com/opengemeente/klantsync/internal/infrastructure/postgres"
	"github.com/opengemeente/klantsync/internal/infrastructure/zgw"
	"github.com/opengemeente/klantsync/internal/kafka"
	transporthttp "github.com/opengemeente/klantsync/internal/transport/http"
)

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Str("env", cfg.Server.Env).Str("strategie", cfg.Registratie.Strategie).Msg("starting klantsync")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────────────
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping failed")
	}
	log.Info().Msg("postgres connected")

	processed := postgres.New(pool)

	// ── API clients ───────────────────────────────────────────────────────────
	deps := application.Deps{
		Zaken:       zgw.NewZakenClient(cfg.Zaken.BaseURL, cfg.Zaken.ClientID, cfg.Zaken.ClientSecret),
		Catalogi:    zgw.NewCatalogiClient(cfg.Catalogi.BaseURL, cfg.Catalogi.ClientID, cfg.Catalogi.ClientSecret),
		Klanten:     openklant.New(cfg.OpenKlant.BaseURL, cfg.OpenKlant.Token),
		Submissions: objecten.New(cfg.Submissions.BaseURL, cfg.Submissions.APIKey),
	}

	// ── Registration strategy ─────────────────────────────────────────────────
	strategy := application.NewStrategy(cfg.Registratie.Strategie, application.Options{
		ZakenRoot:           cfg.Registratie.ZakenRoot,
		RolTypen:            cfg.Registratie.RolTypen,
		Catalogi:            cfg.Registratie.Catalogi,
		UpdateRol:           cfg.Registratie.UpdateRol,
		FormulierEigenschap: cfg.Registratie.FormulierEigenschap,
		Velden: application.VeldenScan{
			Email:        cfg.Registratie.VeldenEmail,
			Telefoon:     cfg.Registratie.VeldenTelefoon,
			KanaalKeuze:  cfg.Registratie.VeldenKanaalKeuze,
			EmailAkkoord: cfg.Registratie.VeldenEmailAkkoord,
		},
	}, deps)

	// ── Kafka ─────────────────────────────────────────────────────────────────
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka producer")
	}
	defer producer.Close()

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroupID, cfg.Kafka.Topic, strategy, processed)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka consumer")
	}

	go consumer.Start(ctx)
	log.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka consumer started")

	// ── Processed-marker TTL purge (every 24h) ────────────────────────────────
	go func() {
		ticker := time.NewTicker(postgres.DefaultTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := processed.PurgeExpired(context.Background()); err != nil {
					log.Error().Err(err).Msg("processed-marker purge failed")
				} else {
					log.Info().Int64("purged", n).Msg("processed markers purged")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// ── HTTP Server ───────────────────────────────────────────────────────────
	handler := transporthttp.NewHandler(producer, cfg.Registratie.ZakenRoot)
	router := transporthttp.NewRouter(handler, cfg.Server.APIKey)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := router.Start(":" + cfg.Server.Port); err != nil {
			log.Info().Msg("HTTP server stopped")
		}
	}()

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("klantsync stopped")
}
