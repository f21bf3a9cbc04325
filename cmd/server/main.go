package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dmserver/internal/config"
	"dmserver/internal/domain"
	"dmserver/internal/httpserver"
	"dmserver/internal/logging"
	"dmserver/internal/notify"
	"dmserver/internal/security"
	"dmserver/internal/service"
	"dmserver/internal/store/postgres"
	"dmserver/internal/store/sqlite"
	"dmserver/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logging.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(cfg.LogLevel, cfg.LogPretty, cfg.AppName)
	log := logging.L()

	// Stores
	var (
		db    *sql.DB
		users domain.UserStore
		rooms domain.RoomStore
		msgs  domain.MessageStore
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		if err := postgres.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		users = postgres.NewUserRepo(db)
		rooms = postgres.NewRoomRepo(db)
		msgs = postgres.NewMessageRepo(db)
	default:
		db, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		if err := sqlite.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		users = sqlite.NewUserRepo(db)
		rooms = sqlite.NewRoomRepo(db)
		msgs = sqlite.NewMessageRepo(db)
	}
	defer db.Close()

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	// WebSocket hub and notification sink. With redis configured,
	// notifications fan out across instances; otherwise delivery is local.
	hub := ws.NewHub()
	localSink := ws.NewHubSink(hub)

	ctx, stopSub := context.WithCancel(context.Background())
	defer stopSub()

	var sink domain.NotificationSink = localSink
	if cfg.RedisAddr != "" {
		client, err := notify.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()

		sink = notify.NewSink(client)
		sub := notify.NewSubscriber(client, localSink)
		go sub.Run(ctx)
	}

	// Core services
	directory := service.NewRoomDirectory(rooms)
	presence := service.NewPresenceTracker(users, log)
	msgRouter := service.NewMessageRouter(directory, msgs, sink, cfg.StoreTimeout, log)
	authSvc := service.NewAuthService(users, presence, tokenSvc, passwordHasher)

	wsHandler := ws.MakeHandler(hub, tokenSvc, users, presence, msgRouter, cfg.CORSOrigins)
	router := httpserver.NewRouter(cfg, tokenSvc, users, authSvc, presence, msgRouter, wsHandler)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
