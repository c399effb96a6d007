package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"gitlab.com/dirk.krummacker/phonebook/internal/clock"
	"gitlab.com/dirk.krummacker/phonebook/internal/config"
	"gitlab.com/dirk.krummacker/phonebook/internal/logging"
	"gitlab.com/dirk.krummacker/phonebook/internal/service"
	"gitlab.com/dirk.krummacker/phonebook/internal/storage"
)

// Usage example on the command line:
// > PORT=8080 GIN_MODE=release GIN_LOGGING=off go run main.go -config=../../phonebook.yml
func main() {
	configFile := flag.String("config", config.DefaultFile, "the configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, afero.NewOsFs(), *configFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run serves the phonebook until ctx is cancelled, then shuts the server down and saves the book.
func run(ctx context.Context, fsys afero.Fs, configFile string) error {
	cfg, err := config.Load(fsys, configFile)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logger.Level, cfg.Logger.Format, os.Stderr)
	slog.SetDefault(logger)
	mainLog := logger.With(logging.KeyComponent, logging.CompMain)

	store, err := storage.Open(ctx, cfg.Storage, fsys, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	book, err := store.Load(ctx)
	if err != nil {
		return err
	}

	service.SetupPhonebook(book, store, cfg.Server.Autosave, clock.Real{}, logger)
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := service.SetupHttpRouter(cfg.Server)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           service.WithCORS(router, cfg.Server.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		mainLog.Info("phonebook service listening",
			logging.KeyPort, cfg.Server.Port,
			logging.KeyDriver, cfg.Storage.Driver,
			logging.KeyCount, book.Len())
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		mainLog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.GracefulShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLog.Error("shutdown failed", logging.KeyError, err)
	}
	if err := service.SaveBook(shutdownCtx); err != nil {
		return fmt.Errorf("save phonebook: %w", err)
	}
	mainLog.Info("phonebook saved")
	return nil
}
