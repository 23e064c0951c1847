package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/turnapp-dev/scheduling-console/backend/internal/client"
	"github.com/turnapp-dev/scheduling-console/backend/internal/config"
	"github.com/turnapp-dev/scheduling-console/backend/internal/handler"
	"github.com/turnapp-dev/scheduling-console/backend/internal/identity"
	"github.com/turnapp-dev/scheduling-console/backend/internal/session"
)

func main() {
	/**********************************************
	 * create the logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * load the configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("unable to load configuration", "error", err)
		return
	}

	/**********************************************
	 * acquire the outbound service token
	 **********************************************/
	tokens := identity.NewTokenSource(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Identity.RequestTimeout)*time.Second)
	defer cancel()

	if err := tokens.Refresh(ctx); err != nil {
		logger.Error("unable to acquire the initial service token", "error", err)
		return
	}

	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go tokens.Run(runCtx)

	/**********************************************
	 * create the backend clients
	 **********************************************/
	serviceTimeout := time.Duration(cfg.Services.RequestTimeout) * time.Second
	users := client.NewUsersClient(cfg.Services.UsersBaseURL, serviceTimeout, tokens)
	shifts := client.NewShiftsClient(cfg.Services.ShiftsBaseURL, serviceTimeout, tokens)
	schedules := client.NewSchedulesClient(cfg.Services.SchedulesBaseURL, serviceTimeout, tokens)

	/**********************************************
	 * connect to rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("unable to connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("unable to open a channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("unable to declare the queue", "error", err)
		return
	}

	/**********************************************
	 * connect to redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	/**********************************************
	 * create the wizard session manager
	 **********************************************/
	sessions := session.NewManager(time.Duration(cfg.Wizard.SessionTTL) * time.Second)
	go sessions.Run(runCtx, time.Duration(cfg.Wizard.SweepInterval)*time.Second)

	/**********************************************
	 * create the handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, users, shifts, schedules, sessions, ch, rdb)
	if err != nil {
		logger.Error("unable to create the handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * start the HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("unable to start the server", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
