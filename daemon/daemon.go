package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/kotleni/cats/coordinator"
	"github.com/kotleni/cats/internal/apperr"
	"github.com/kotleni/cats/internal/config"
	"github.com/kotleni/cats/internal/pathutil"
	"github.com/kotleni/cats/notify"
	"github.com/kotleni/cats/service"
	"github.com/kotleni/cats/store"
	"github.com/kotleni/cats/store/sqlite"
)

var errAddressInUse = &apperr.Error{
	Kind:    apperr.Persistence,
	Message: "address %s is in use: is another cats daemon running?",
}

// OpenStore opens the database selected by cfg.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.DB, error) {
	path := cfg.Path
	if path == "" {
		path = pathutil.DBFilePath(cfg.Driver)
	}

	slog.InfoContext(ctx, "opening store", slog.String("driver", cfg.Driver), slog.String("path", path))

	if cfg.Driver == config.DriverSQLite {
		return sqlite.Open(ctx, path)
	}

	return store.NewClient(path)
}

// Run starts the daemon and blocks until ctx is cancelled. The persisted
// session is restored before the API starts accepting requests.
func Run(ctx context.Context, cfg *config.Config) error {
	db, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}

	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("closing store", slog.Any("error", err))
		}
	}()

	svc := service.New(db, service.WithTickInterval(cfg.Timer.TickInterval))

	if err := svc.Restore(ctx); err != nil {
		return err
	}

	coord := coordinator.New(db, svc, cfg.Timer.IconCount)

	ln, err := net.Listen("tcp", cfg.Daemon.Address)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return errAddressInUse.Fmt(cfg.Daemon.Address)
		}

		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.Run(ctx)
	})

	g.Go(func() error {
		return NewServer(coord).Serve(ctx, ln)
	})

	if cfg.Notifications.Enabled {
		n := notify.New(cfg.Notifications)

		g.Go(func() error {
			return n.Run(ctx, coord)
		})
	}

	err = g.Wait()

	slog.Info("daemon stopped", slog.Any("error", err))

	return err
}
