// uci-analyze analyses chess positions with a UCI engine, one position at a
// time, in batches, or behind an HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/lgbarn/uci-analysis-go/internal/config"
	"github.com/lgbarn/uci-analysis-go/internal/output"
)

const programVersion = "0.1.0"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	if *version {
		fmt.Printf("uci-analyze version %s\n", programVersion)
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	log, err := cfg.Log.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	out, closeOut := setupOutputFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log, out)
	stop()
	closeOut()

	if err != nil {
		log.Error().Err(err).Msg("uci-analyze failed")
		os.Exit(1)
	}
}

// loadConfig builds the configuration from defaults, the optional YAML file
// and the command-line flags, in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := applyFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// setupOutputFile opens the -o file, or returns stdout.
func setupOutputFile() (io.Writer, func()) {
	if *outputFile == "" {
		return os.Stdout, func() {}
	}
	file, err := os.Create(*outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file %s: %v\n", *outputFile, err)
		os.Exit(1)
	}
	return file, func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing output file %s: %v\n", *outputFile, err)
		}
	}
}

// run dispatches to the mode selected by the flags.
func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, out io.Writer) error {
	switch {
	case *serveAddr != "":
		return runServer(ctx, cfg, log)
	case *batchFile != "":
		in, closeIn, err := openBatchInput(*batchFile)
		if err != nil {
			return err
		}
		defer closeIn()
		return runBatch(ctx, cfg, log, in, newWriter(cfg, out, true))
	default:
		return runSingle(ctx, cfg, log, newWriter(cfg, out, false))
	}
}

// newWriter selects the output format. JSON batches are collected into one
// document; a single analysis is written as one compact object.
func newWriter(cfg *config.Config, out io.Writer, batch bool) output.EvalWriter {
	switch {
	case cfg.Output.JSON && batch:
		return output.NewJSONWriter(out, cfg.Output.Precision)
	case cfg.Output.JSON:
		return output.NewJSONWriterSingle(out, cfg.Output.Precision)
	}
	return output.NewTextWriter(out, cfg.Output.Precision, cfg.Output.MaxLineLength)
}
