package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/julienschmidt/httprouter"

	"trajet.transit.mg/internal/app"
	"trajet.transit.mg/internal/appconf"
	"trajet.transit.mg/internal/logging"
	"trajet.transit.mg/internal/report"
	"trajet.transit.mg/internal/restapi"
	"trajet.transit.mg/internal/webui"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args, os.Stderr)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stdout, cfg.Env)
	slog.SetDefault(logger)

	enabled, err := report.Setup(cfg.SentryDSN, cfg.Env.String(), version)
	if err != nil {
		return err
	}
	if enabled {
		report.ConfigureScope(cfg.Env.String(), version)
		defer report.Flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		report.ReportError(err, sentry.LevelFatal)
		return err
	}
	defer logging.SafeCloseWithLogging(store, logger, "store")

	application := app.New(cfg, logger, store)
	api := restapi.NewRestAPI(application)
	defer api.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      buildHandler(application, api),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	if err := serve(ctx, srv, logger); err != nil {
		report.ReportError(err, sentry.LevelFatal)
		return err
	}
	return nil
}

func buildHandler(application *app.Application, api *restapi.RestAPI) http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)
	if application.Config.Env == appconf.Development {
		ui := &webui.WebUI{Application: application}
		ui.SetWebUIRoutes(router)
	}
	return api.Handler(router)
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
