package main

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lgbarn/uci-analysis-go/internal/config"
	"github.com/lgbarn/uci-analysis-go/internal/engine"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
	"github.com/lgbarn/uci-analysis-go/internal/transport"
)

// engineHandle is a running engine process with its session.
type engineHandle struct {
	proc    *transport.Process
	session *engine.Session
	group   *errgroup.Group
}

// startEngine launches the configured engine and starts reading its output.
// The process outlives ctx so that a cancelled analysis still receives the
// engine's final answer; Close ends it.
func startEngine(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*engineHandle, error) {
	ctx = context.WithoutCancel(ctx)

	proc, err := transport.Start(ctx, cfg.Engine.Path,
		transport.WithArgs(cfg.Engine.Args...),
		transport.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.ProtocolOptions(), engine.WithLogger(log.With().Str("engine", proc.Path()).Logger()))
	h := &engineHandle{
		proc:    proc,
		session: engine.NewSession(proc, opts...),
	}

	var gctx context.Context
	h.group, gctx = errgroup.WithContext(ctx)
	h.group.Go(func() error {
		return h.session.Run(gctx)
	})
	return h, nil
}

// Close quits the engine and waits for its output to be drained.
func (h *engineHandle) Close() error {
	err := h.proc.Close()
	if werr := h.group.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		err = errors.Join(err, werr)
	}
	return err
}
