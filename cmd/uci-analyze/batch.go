package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lgbarn/uci-analysis-go/internal/config"
	"github.com/lgbarn/uci-analysis-go/internal/engine"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
	"github.com/lgbarn/uci-analysis-go/internal/hashing"
	"github.com/lgbarn/uci-analysis-go/internal/output"
	"github.com/lgbarn/uci-analysis-go/internal/worker"
)

// analyzer runs one Work to completion. *engine.Session implements it.
type analyzer interface {
	Analyze(ctx context.Context, w *engine.Work) (engine.EvalResult, bool, error)
}

// batchJob analyses work items on per-worker engines, sharing a cache.
type batchJob struct {
	engines []analyzer
	cache   *hashing.EvalCache
	timeout time.Duration // Per position; 0 waits for the engine
	log     zerolog.Logger
}

// process is the worker.ProcessFunc for a batch.
func (b *batchJob) process(ctx context.Context, id int, item worker.WorkItem) worker.ProcessResult {
	work, err := engine.NewWork(item.Request)
	if err != nil {
		return worker.ProcessResult{Err: err}
	}

	key, keyErr := hashing.WorkKey(work)
	if keyErr == nil {
		if ev, ok := b.cache.Get(key); ok {
			return worker.ProcessResult{Result: &ev, Cached: true}
		}
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	last, ok, err := b.engines[id].Analyze(ctx, work)
	switch {
	case err != nil && !isInterrupt(err):
		return worker.ProcessResult{Err: err}
	case !ok:
		return worker.ProcessResult{Err: err}
	}

	// Results cut short by a timeout or an interrupt depend on timing.
	if err == nil && keyErr == nil && !b.cache.Put(key, last) {
		b.log.Debug().Str("position", item.Label).Msg("evaluation cache full")
	}
	return worker.ProcessResult{Result: &last}
}

// batchLine is one parsed input line.
type batchLine struct {
	label string
	req   engine.Request
	err   error
}

// readBatch parses every position in r. Lines that cannot be turned into a
// request are kept with their error so they are reported in place.
func readBatch(r io.Reader, cfg *config.Config) ([]batchLine, error) {
	var lines []batchLine
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fen, moves, skip, err := parseBatchLine(scanner.Text())
		if skip {
			continue
		}
		line := batchLine{label: positionLabel(fen, moves), err: err}
		if err == nil {
			line.req, line.err = cfg.Request(fen, moves)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading batch input")
	}
	return lines, nil
}

// parseBatchLine splits "FEN[;move move ...]". "startpos" stands for the
// starting position and an EPD position (four fields) gets default move
// counters. Blank lines and # comments are skipped.
func parseBatchLine(line string) (fen string, moves []string, skip bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil, true, nil
	}

	position, moveText, _ := strings.Cut(line, ";")
	if fields := strings.Fields(moveText); len(fields) > 0 {
		moves = fields
	}

	fields := strings.Fields(position)
	switch {
	case len(fields) == 1 && fields[0] == "startpos":
		return "", moves, false, nil
	case len(fields) == 6:
		return strings.Join(fields, " "), moves, false, nil
	case len(fields) >= 4:
		return strings.Join(fields[:4], " ") + " 0 1", moves, false, nil
	}
	return position, moves, false, fmt.Errorf("%q: %w", position, errors.ErrInvalidFEN)
}

// openBatchInput opens path, with "-" meaning stdin.
func openBatchInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening batch file %s", path)
	}
	return file, func() { _ = file.Close() }, nil
}

// runBatch analyses every position in in and writes the results in input
// order.
func runBatch(ctx context.Context, cfg *config.Config, log zerolog.Logger, in io.Reader, w output.EvalWriter) error {
	search, err := cfg.Search.SearchBy()
	if err != nil {
		return err
	}
	if !search.Bounded() && *timeout <= 0 {
		return fmt.Errorf("batch analysis needs a bounded search or -timeout: %w", errors.ErrInvalidConfig)
	}

	lines, err := readBatch(in, cfg)
	if err != nil {
		return err
	}

	numWorkers := cfg.Batch.Workers
	if numWorkers > len(lines) {
		numWorkers = len(lines)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	job := &batchJob{
		cache:   hashing.NewEvalCache(cfg.Batch.CacheCapacity),
		timeout: *timeout,
		log:     log,
	}
	var handles []*engineHandle
	closeEngines := func() error {
		var errs []error
		for _, h := range handles {
			errs = append(errs, h.Close())
		}
		return errors.Join(errs...)
	}
	for i := 0; i < numWorkers; i++ {
		h, err := startEngine(ctx, cfg, log.With().Int("worker", i).Logger())
		if err != nil {
			return errors.Join(err, closeEngines())
		}
		handles = append(handles, h)
		job.engines = append(job.engines, h.session)
	}

	start := time.Now()
	records := analyseBatch(ctx, job, lines)

	var failed int
	for _, rec := range records {
		if rec.Err != nil {
			failed++
		}
		if err := w.WriteEval(rec); err != nil {
			return errors.Join(err, closeEngines())
		}
	}
	log.Info().
		Int("positions", len(records)).
		Int("failed", failed).
		Int("cacheHits", job.cache.Hits()).
		Dur("elapsed", time.Since(start)).
		Msg("batch finished")

	return errors.Join(w.Close(), closeEngines())
}

// analyseBatch runs lines through a worker pool and returns one record per
// line in input order. Positions not reached before ctx ends carry its
// error.
func analyseBatch(ctx context.Context, job *batchJob, lines []batchLine) []output.Record {
	records := make([]output.Record, len(lines))
	filled := make([]bool, len(lines))

	pool := worker.NewPool(job.process,
		worker.WithWorkers(len(job.engines)),
		worker.WithBufferSize(2*len(job.engines)),
	)
	pool.Start(ctx)

	go func() {
		defer pool.Close()
		for i, line := range lines {
			if line.err != nil {
				continue
			}
			if ctx.Err() != nil {
				pool.Stop()
				return
			}
			pool.Submit(worker.WorkItem{Request: line.req, Label: line.label, Index: i})
		}
	}()

	for res := range pool.Results() {
		records[res.Index] = output.Record{
			Label:  res.Label,
			Eval:   res.Result,
			Cached: res.Cached,
			Err:    res.Err,
		}
		filled[res.Index] = true
	}

	for i, line := range lines {
		switch {
		case filled[i]:
		case line.err != nil:
			records[i] = output.Record{Label: line.label, Err: line.err}
		default:
			records[i] = output.Record{Label: line.label, Err: ctx.Err()}
		}
	}
	return records
}
