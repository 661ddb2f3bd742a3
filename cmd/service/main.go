package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gitlab.com/dirk.krummacker/contact-details/internal/config"
	"gitlab.com/dirk.krummacker/contact-details/internal/contact"
	"gitlab.com/dirk.krummacker/contact-details/internal/logging"
	"gitlab.com/dirk.krummacker/contact-details/internal/metrics"
	"gitlab.com/dirk.krummacker/contact-details/internal/service"
	"gitlab.com/dirk.krummacker/contact-details/internal/store/memstore"
	"gitlab.com/dirk.krummacker/contact-details/internal/store/mongostore"
	"gitlab.com/dirk.krummacker/contact-details/internal/store/sqlstore"
)

// Usage examples on the command line:
// > PORT=8080 MONGO_URI=mongodb://localhost:27017 GIN_MODE=release GIN_LOGGING=OFF go run main.go
// > STORE=mysql DBHOST=localhost DBUSER=dirk DBPWD=secret go run main.go
// > STORE=memory LOG_LEVEL=debug METRICS_ENABLED=true go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.Logging.Format, cfg.Logging.Level)

	if cfg.HTTP.GinMode != "" {
		gin.SetMode(cfg.HTTP.GinMode)
	}

	openCtx, cancelOpen := context.WithTimeout(context.Background(), 15*time.Second)
	repo, closeStore, err := openStore(openCtx, cfg.Store)
	cancelOpen()
	if err != nil {
		level.Error(logger).Log("msg", "failed to open contact store", "store", cfg.Store.Kind, "err", err)
		os.Exit(1)
	}
	defer closeStore()
	level.Info(logger).Log("msg", "contact store opened", "store", cfg.Store.Kind)

	contacts, err := contact.NewService(repo, log.With(logger, "component", "contact"))
	if err != nil {
		level.Error(logger).Log("msg", "failed to create contact service", "err", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.HTTP.MetricsEnabled {
		m = metrics.New()
	}
	router := service.SetupHttpRouter(cfg.HTTP, contacts, log.With(logger, "component", "http"), m)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "starting http server", "addr", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		level.Info(logger).Log("msg", "received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			level.Error(logger).Log("msg", "server stopped unexpectedly", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	level.Info(logger).Log("msg", "shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		level.Error(logger).Log("msg", "graceful shutdown failed", "err", err)
	}
}

// openStore connects to the configured contact store. The returned function releases it.
func openStore(ctx context.Context, cfg config.StoreConfig) (contact.Repository, func(), error) {
	switch cfg.Kind {
	case config.StoreMongo:
		s, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close(context.Background()) }, nil
	case config.StoreMySQL:
		s, err := sqlstore.Open(sqlstore.DSN(cfg.MySQL.User, cfg.MySQL.Password, cfg.MySQL.Host, cfg.MySQL.Database))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreMemory:
		return memstore.New(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Kind)
}
