package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/notify"
	"github.com/danielhkuo/quickly-vote/otp"
	"github.com/danielhkuo/quickly-vote/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		slog.Error("Error parsing log level", "error", err)
		os.Exit(1)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// OTP delivery: Twilio Verify when configured, console otherwise
	console := notify.NewConsoleSink(slog.Default())
	var channel otp.Channel = otp.LocalOnly{Sink: console}
	var messenger handlers.Messenger
	if cfg.TwilioEnabled() {
		client := notify.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		messenger = notify.NewTwilioMessenger(client, cfg.TwilioFrom)
		if cfg.RemoteVerifyEnabled() {
			channel = otp.RemoteVerify{
				Client:   notify.NewTwilioVerify(client, cfg.TwilioVerifySID),
				Fallback: console,
			}
		}
		slog.Info("Twilio configured", "verify", cfg.RemoteVerifyEnabled())
	} else {
		slog.Warn("Twilio not configured, OTP codes go to the log")
	}

	svc, err := router.NewServices(dbConn, cfg, channel, messenger)
	if err != nil {
		slog.Error("service setup failed", "error", err)
		os.Exit(1)
	}

	// Periodic cleanup of expired OTP entries
	if cfg.OTPSweepSchedule != "" {
		c := cron.New()
		if _, err := otp.ScheduleSweep(c, cfg.OTPSweepSchedule, svc.Ledger, time.Now); err != nil {
			slog.Error("invalid OTP sweep schedule", "error", err, "schedule", cfg.OTPSweepSchedule)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, svc)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
