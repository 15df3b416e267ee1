// Command verigate-report runs the delivery report listener.
// It terminates the gateway's callback URL, verifies report signatures, and
// optionally persists report state in postgres
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"verigate/internal/integrity"
	"verigate/internal/platform/config"
	"verigate/internal/platform/logger"
	phttp "verigate/internal/platform/net/http"
	mw "verigate/internal/platform/net/middleware"
	"verigate/internal/platform/store"
	"verigate/internal/report"

	"github.com/go-chi/chi/v5"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	cfg := root.Prefix("REPORT_")

	verifier, err := integrity.New(root.MustString("GATEWAY_TOKEN"), integrity.Options{
		MaxSkew:         cfg.MayDuration("MAX_SKEW", integrity.DefaultMaxSkew),
		FutureTolerance: cfg.MayDuration("FUTURE_TOLERANCE", integrity.DefaultFutureTolerance),
	})
	if err != nil {
		l.Panic().Err(err).Msg("verifier init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo report.Repo
	pgCfg := cfg.Prefix("PG_")
	if pgCfg.MayBool("ENABLED", false) {
		st, err := store.Open(ctx, store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("URL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
		}, store.WithLogger(*l))
		if err != nil {
			l.Panic().Err(err).Msg("store.Open failed")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()

		if _, err := st.PG.Exec(ctx, report.SchemaSQL); err != nil {
			l.Panic().Err(err).Msg("schema apply failed")
		}
		repo = report.NewPGRepo(st.PG)
	} else {
		l.Info().Msg("report storage disabled, running verify-and-log only")
	}

	handler := report.NewHandler(verifier, repo)

	srv := phttp.NewServer(cfg, func(m *chi.Mux) {
		m.Use(mw.RequestID)
		m.Use(mw.AccessLog(mw.AccessLogOptions{Slow: cfg.MayDuration("SLOW_REQUEST", 2*time.Second)}))
		m.Use(mw.RecoverJSON)
	})
	handler.Mount(srv.Mux())

	l.Info().Str("addr", srv.Addr()).Msg("report listener starting")
	if err := srv.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("report listener failed")
	}
	l.Info().Msg("report listener stopped")
}
