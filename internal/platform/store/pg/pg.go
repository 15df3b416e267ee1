// Package pg provides a Postgres client using pgxpool with optional query tracing
package pg

import (
	"context"

	"verigate/internal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Config configures pgxpool for pg
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG is a postgres client with pool and optional tracer
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open creates a new PG client with the given config, optional tracer, and optional pool config mutator
func Open(ctx context.Context, cfg Config, tracer QueryTracer, poolCfgMut func(*pgxpool.Config)) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if poolCfgMut != nil {
		poolCfgMut(pcfg)
	}
	pool, err := newPool(ctx, pcfg) // use seam
	if err != nil {
		return nil, err
	}
	return &PG{
		Pool:   pool,
		Tracer: tracer,
		SlowMs: cfg.SlowMs,
	}, nil
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// QueryEvent describes one executed statement for tracing
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that always prints SQL when LogSQL=true,
// independent of the process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	elapsedMs := float64(ev.ElapsedUS) / 1000.0
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}

	evt.Float64("elapsed_ms", elapsedMs).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// compact collapses whitespace runs so multi-line SQL logs on one line
func compact(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}
