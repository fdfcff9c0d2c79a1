package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/lomik/zapwriter"
	"go.uber.org/zap"

	"github.com/go-graphite/carbontrack/cmd/carbontrack/config"
	carbontrackHttp "github.com/go-graphite/carbontrack/cmd/carbontrack/http"
)

// BuildVersion is provided to be overridden at build time. Eg. go build -ldflags -X 'main.BuildVersion=...'
var BuildVersion = "(development build)"

func main() {
	err := zapwriter.ApplyConfig([]zapwriter.Config{config.DefaultLoggerConfig})
	if err != nil {
		log.Fatal("Failed to initialize logger with default configuration")
	}
	logger := zapwriter.Logger("main")

	configPath := flag.String("config", "", "Path to the `config file`.")
	envPrefix := flag.String("envprefix", "CARBONTRACK", "Prefix for environment variables override")
	flag.Parse()
	if *envPrefix == "" {
		logger.Warn("empty prefix is not recommended due to possible collisions with OS environment variables")
	}
	config.SetUpViper(logger, configPath, *envPrefix)
	config.SetUpConfig(logger, BuildVersion)
	defer config.Config.Store.Close()

	h := carbontrackHttp.NewHandlers(&config.Config)
	h.BuildVersion = BuildVersion
	carbontrackHttp.SetupMetrics(logger, config.Config.ResponseCache)

	r := h.InitHandlers(config.Config.Expvar.Enabled)
	handler := handlers.CompressHandler(r)
	handler = handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
	)(handler)
	handler = handlers.ProxyHeaders(handler)

	srv := &http.Server{
		Addr:              config.Config.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         config.Config.ServerTLS,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		h.Ready.UnSet()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting carbontrack",
		zap.String("build_version", BuildVersion),
		zap.String("listen", config.Config.Listen),
		zap.String("storage", config.Config.Storage.Type),
		zap.Bool("tls", srv.TLSConfig != nil),
	)
	h.Ready.Set()

	if srv.TLSConfig != nil {
		err = srv.ListenAndServeTLS("", "")
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen failed",
			zap.Error(err),
		)
	}
}
