package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lgbarn/uci-analysis-go/internal/config"
	"github.com/lgbarn/uci-analysis-go/internal/engine"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
)

// Command-line flags
var (
	// Configuration
	configFile = flag.String("config", "", "Read settings from YAML `file` before applying flags")

	// Engine options
	enginePath   = flag.String("engine", "", "Engine executable (default stockfish)")
	engineArgs   = flag.String("engine-args", "", "Space separated arguments passed to the engine")
	threads      = flag.Int("threads", 0, "Engine search threads")
	hashSize     = flag.Int("hash", 0, "Engine hash table size in MB")
	multiPV      = flag.Int("multipv", 0, "Number of principal variations to report")
	depthCeiling = flag.Int("ceiling", -1, "Stop any search at this depth (0 disables)")

	// Position
	fenString = flag.String("fen", "", "Position to analyse (default the starting position)")
	moveList  = flag.String("moves", "", "Space separated UCI moves played from -fen")
	threat    = flag.Bool("threat", false, "Analyse the opponent's threat in the final position")

	// Search limit; at most one applies
	searchDepth    = flag.Int("depth", 0, "Search to a fixed depth")
	searchNodes    = flag.Int("nodes", 0, "Search a fixed number of nodes")
	searchMovetime = flag.Int("movetime", 0, "Search for a fixed number of milliseconds")
	infinite       = flag.Bool("infinite", false, "Search until interrupted or -timeout expires")
	timeout        = flag.Duration("timeout", 0, "Stop the analysis after this long (0 waits)")

	// Output options
	outputFile = flag.String("o", "", "Write results to `file` instead of stdout")
	jsonOutput = flag.Bool("J", false, "Output in JSON format")
	precision  = flag.Int("precision", -1, "Decimals for centipawn scores")
	lineLength = flag.Int("w", 0, "Maximum output line length")

	// Batch and server modes
	batchFile     = flag.String("batch", "", "Analyse every position listed in `file` (- for stdin)")
	workers       = flag.Int("workers", 0, "Number of engines used in batch mode")
	cacheCapacity = flag.Int("cache", -1, "Maximum cached evaluations in batch mode (0 = unlimited)")
	serveAddr     = flag.String("serve", "", "Serve the HTTP API on `addr` instead of analysing")

	// Logging
	logLevel  = flag.String("log-level", "", "Log level: trace, debug, info, warn, error")
	logFormat = flag.String("log-format", "", "Log format: console or json")

	// Help
	help    = flag.Bool("h", false, "Show help")
	version = flag.Bool("version", false, "Show version")
)

// applyFlags applies command-line flags over cfg.
func applyFlags(cfg *config.Config) error {
	applyEngineFlags(cfg)
	if err := applySearchFlags(cfg); err != nil {
		return err
	}
	applyOutputFlags(cfg)
	applyBatchFlags(cfg)
	applyLogFlags(cfg)
	return nil
}

// applyEngineFlags configures the engine process and its options.
func applyEngineFlags(cfg *config.Config) {
	if *enginePath != "" {
		cfg.Engine.Path = *enginePath
	}
	if *engineArgs != "" {
		cfg.Engine.Args = strings.Fields(*engineArgs)
	}
	if *threads > 0 {
		cfg.Engine.Threads = *threads
	}
	if *hashSize > 0 {
		cfg.Engine.Hash = *hashSize
	}
	if *multiPV > 0 {
		cfg.Engine.MultiPV = *multiPV
	}
	if *depthCeiling >= 0 {
		cfg.Engine.DepthCeiling = *depthCeiling
	}
}

// applySearchFlags configures the search limit. Combining limits is an
// error; without any flag the configured limit is kept.
func applySearchFlags(cfg *config.Config) error {
	type limit struct {
		kind  engine.SearchKind
		value int
		set   bool
	}
	limits := []limit{
		{engine.SearchDepth, *searchDepth, *searchDepth > 0},
		{engine.SearchNodes, *searchNodes, *searchNodes > 0},
		{engine.SearchMovetime, *searchMovetime, *searchMovetime > 0},
		{engine.SearchInfinite, 0, *infinite},
	}

	var chosen []limit
	for _, l := range limits {
		if l.set {
			chosen = append(chosen, l)
		}
	}
	switch len(chosen) {
	case 0:
		return nil
	case 1:
		cfg.Search.Kind = chosen[0].kind.String()
		cfg.Search.Value = chosen[0].value
		return nil
	}
	return fmt.Errorf("only one of -depth, -nodes, -movetime and -infinite may be given: %w", errors.ErrInvalidConfig)
}

// applyOutputFlags configures result formatting.
func applyOutputFlags(cfg *config.Config) {
	if *jsonOutput {
		cfg.Output.JSON = true
	}
	if *precision >= 0 {
		cfg.Output.Precision = *precision
	}
	if *lineLength > 0 {
		cfg.Output.MaxLineLength = *lineLength
	}
}

// applyBatchFlags configures batch mode and the server address.
func applyBatchFlags(cfg *config.Config) {
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *cacheCapacity >= 0 {
		cfg.Batch.CacheCapacity = *cacheCapacity
	}
	if *serveAddr != "" {
		cfg.Server.Addr = *serveAddr
	}
}

// applyLogFlags configures logging.
func applyLogFlags(cfg *config.Config) {
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: uci-analyze [options]\n\n")
	fmt.Fprintf(os.Stderr, "Analyse chess positions with a UCI engine.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nModes:\n")
	fmt.Fprintf(os.Stderr, "  default  analyse -fen/-moves and print the final evaluation\n")
	fmt.Fprintf(os.Stderr, "  -batch   analyse one position per line: FEN[;move move ...]\n")
	fmt.Fprintf(os.Stderr, "  -serve   expose the engine over HTTP\n")
	fmt.Fprintf(os.Stderr, "\nBatch lines may use \"startpos\" for the starting position; blank\n")
	fmt.Fprintf(os.Stderr, "lines and lines starting with # are ignored.\n")
}
