package cli

import (
	"errors"
	"fmt"
	"io"
	"log"

	"cartridge-engine/internal/audit"
	"cartridge-engine/internal/catalog"
	"cartridge-engine/internal/config"
	"cartridge-engine/internal/pipeline"
	"cartridge-engine/internal/resource"
	"cartridge-engine/internal/workpool"
)

// app is a configured service plus whatever must be closed after it.
type app struct {
	cfg     *config.Config
	svc     *pipeline.Service
	closers []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

// bootstrap loads the config and builds a Service over the local filesystem.
// withAudit enables the SQLite sink when persistence is configured.
func bootstrap(opts *rootOptions, withAudit bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	res := resource.Dir{}

	store, err := catalog.Load(res, cfg.Config.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	rt := &app{cfg: cfg}

	var sink audit.Sink = audit.Nop{}
	if withAudit && cfg.Persistence.Enabled {
		db, err := audit.NewSQLite(cfg.Persistence.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}

		log.Printf("audit persistence enabled at %s", cfg.Persistence.DSN)

		sink = db
		rt.closers = append(rt.closers, db)
	}

	rt.svc = pipeline.New(store, res, cfg.Cartridges.Root, pipeline.Options{
		Pool: workpool.New(cfg.Bulk.Parallelism),
		Sink: sink,
	})

	return rt, nil
}
