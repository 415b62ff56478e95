package main

import (
	"context"
	"net"
	"net/http"

	"github.com/listenlog/listenlog/pkg/bookinfo"
	"github.com/listenlog/listenlog/pkg/config"
	"github.com/listenlog/listenlog/pkg/database"
	"github.com/listenlog/listenlog/pkg/migrations"
	"github.com/listenlog/listenlog/pkg/server"
	"github.com/listenlog/listenlog/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting listenlog", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	log.Info("database opened", logger.Data{"path": cfg.DatabaseFilePath})

	schema, err := migrations.Inspect(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if schema.Untracked {
		log.Info("adopted existing audiobooks table", logger.Data{"rows": schema.Audiobooks})
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	enricher := bookinfo.NewClient(cfg)
	if !cfg.EnrichmentEnabled {
		log.Info("book info enrichment disabled")
	}

	srv, err := server.New(cfg, db, enricher)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		// The actual port matters when server_port is 0.
		actualPort := listener.Addr().(*net.TCPAddr).Port
		log.Info("server started", logger.Data{"host": cfg.ServerHost, "port": actualPort})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
