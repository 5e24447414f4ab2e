package main

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lgbarn/uci-analysis-go/internal/config"
	"github.com/lgbarn/uci-analysis-go/internal/engine"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
	"github.com/lgbarn/uci-analysis-go/internal/output"
)

// runSingle analyses the position given by -fen and -moves and writes the
// final evaluation. An interrupted or timed out search still reports the
// last snapshot.
func runSingle(ctx context.Context, cfg *config.Config, log zerolog.Logger, w output.EvalWriter) error {
	moves := strings.Fields(*moveList)
	req, err := cfg.Request(*fenString, moves)
	if err != nil {
		return err
	}
	req.Threat = *threat

	work, err := engine.NewWork(req)
	if err != nil {
		return err
	}

	eng, err := startEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	last, ok, err := eng.session.Analyze(ctx, work)
	if err != nil && !isInterrupt(err) {
		return errors.Join(err, eng.Close())
	}
	if err != nil {
		log.Info().Err(err).Msg("analysis interrupted")
	}

	rec := output.Record{Label: positionLabel(*fenString, moves)}
	if ok {
		rec.Eval = &last
	}
	return errors.Join(w.WriteEval(rec), w.Close(), eng.Close())
}

// isInterrupt reports whether err only says the analysis was cut short.
func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// positionLabel names a position the way it was given.
func positionLabel(fen string, moves []string) string {
	if fen == "" {
		fen = "startpos"
	}
	if len(moves) == 0 {
		return fen
	}
	return fen + "; " + strings.Join(moves, " ")
}
