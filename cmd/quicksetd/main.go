// Command quicksetd runs the quickset HTTP daemon. All configuration
// comes from QUICKSET_* environment variables; see the config package.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hupe1980/quickset"
	"github.com/hupe1980/quickset/config"
	"github.com/hupe1980/quickset/server"
	"github.com/hupe1980/quickset/syncer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "quicksetd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()

	level, _ := quickset.ParseLevel(cfg.LogLevel)
	logger := quickset.NewTextLogger(level)

	qs := quickset.New(quickset.WithLogger(logger))

	auth := server.NewAuthManager()
	if cfg.AuthEnabled() {
		if err := auth.AddUser(cfg.AdminUser, cfg.AdminPass, server.RoleAdmin); err != nil {
			return fmt.Errorf("bootstrap admin user: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sync, err := setupSync(ctx, qs, logger)
	if err != nil {
		return err
	}
	if sync != nil {
		defer sync.Stop()
	}

	srv := server.New(qs, auth, sync, cfg, logger)
	return srv.Run(ctx)
}

// setupSync builds and starts the sync manager when enabled via the
// environment. Returns nil when sync is off or misconfigured without
// tables.
func setupSync(ctx context.Context, qs *quickset.Quickset, logger *quickset.Logger) (*syncer.Manager, error) {
	sc := config.SyncFromEnv()
	if !sc.Enabled {
		return nil, nil
	}
	if sc.SourceType != "clickhouse" {
		return nil, fmt.Errorf("unsupported sync source type %q", sc.SourceType)
	}

	tables := make([]syncer.SyncTable, 0, len(sc.Tables))
	for _, spec := range sc.Tables {
		table, err := syncer.ParseTableSpec(spec)
		if err != nil {
			logger.Warn("skipping sync table", "spec", spec, "error", err)
			continue
		}
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		logger.Warn("sync enabled but no tables configured")
		return nil, nil
	}

	source := syncer.NewClickHouseSource(syncer.SourceConfig{
		Host:     sc.Host,
		Port:     sc.Port,
		User:     sc.User,
		Password: sc.Password,
		Database: sc.Database,
	})

	manager := syncer.NewManager(source, tables, time.Duration(sc.IntervalSecs)*time.Second, logger)
	manager.Start(ctx, qs)
	return manager, nil
}
