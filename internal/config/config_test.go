package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
	"github.com/lgbarn/uci-analysis-go/internal/errors"
	"github.com/lgbarn/uci-analysis-go/internal/testutil"
)

// TestNewConfig_Defaults verifies Config has sensible defaults
func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Engine.Path != "stockfish" {
		t.Errorf("Engine.Path = %q, want stockfish", cfg.Engine.Path)
	}
	if cfg.Engine.Threads != 1 || cfg.Engine.Hash != 16 || cfg.Engine.MultiPV != 1 {
		t.Errorf("engine options = %d/%d/%d, want 1/16/1", cfg.Engine.Threads, cfg.Engine.Hash, cfg.Engine.MultiPV)
	}
	if cfg.Engine.DepthCeiling != 99 {
		t.Errorf("DepthCeiling = %d, want 99", cfg.Engine.DepthCeiling)
	}
	if cfg.Search.Kind != "infinite" {
		t.Errorf("Search.Kind = %q, want infinite", cfg.Search.Kind)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != LogConsole {
		t.Errorf("Log = %+v, want info/console", cfg.Log)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Batch.Workers != 1 {
		t.Errorf("Batch.Workers = %d, want 1", cfg.Batch.Workers)
	}
	testutil.AssertNoError(t, cfg.Validate())
}

// TestConfig_Validate verifies section validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"depth search", func(c *Config) { c.Search = SearchConfig{Kind: "depth", Value: 20} }, false},
		{"ceiling disabled", func(c *Config) { c.Engine.DepthCeiling = 0 }, false},
		{"empty engine path", func(c *Config) { c.Engine.Path = "" }, true},
		{"zero threads", func(c *Config) { c.Engine.Threads = 0 }, true},
		{"zero hash", func(c *Config) { c.Engine.Hash = 0 }, true},
		{"multipv too large", func(c *Config) { c.Engine.MultiPV = 501 }, true},
		{"negative ceiling", func(c *Config) { c.Engine.DepthCeiling = -1 }, true},
		{"unknown search kind", func(c *Config) { c.Search.Kind = "mate" }, true},
		{"bounded search without budget", func(c *Config) { c.Search = SearchConfig{Kind: "nodes"} }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"negative precision", func(c *Config) { c.Output.Precision = -1 }, true},
		{"empty server addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }, true},
		{"negative cache", func(c *Config) { c.Batch.CacheCapacity = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

// TestParse_OverlaysDefaults verifies YAML keys override only what they name
func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
engine:
  path: /usr/games/stockfish
  args: ["--bench-off"]
  multipv: 3
search:
  kind: movetime
  value: 1500
log:
  format: json
batch:
  workers: 4
`))
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, cfg.Engine.Path, "/usr/games/stockfish")
	testutil.AssertEqual(t, cfg.Engine.Args, []string{"--bench-off"})
	testutil.AssertEqual(t, cfg.Engine.MultiPV, 3)
	testutil.AssertEqual(t, cfg.Engine.Threads, 1, "unset keys keep defaults")
	testutil.AssertEqual(t, cfg.Log.Level, "info")
	testutil.AssertEqual(t, cfg.Log.Format, LogJSON)
	testutil.AssertEqual(t, cfg.Batch.Workers, 4)

	search, err := cfg.Search.SearchBy()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, search, engine.Movetime(1500))
}

// TestParse_Errors verifies malformed and invalid files are rejected
func TestParse_Errors(t *testing.T) {
	for _, doc := range []string{
		"engine: [not, a, map]",
		"engine:\n  threads: lots\n",
		"search:\n  kind: depth\n",
	} {
		_, err := Parse([]byte(doc))
		if !errors.Is(err, errors.ErrInvalidConfig) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidConfig", doc, err)
		}
	}
}

// TestLoad verifies reading a config file
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uci.yaml")
	testutil.AssertNoError(t, os.WriteFile(path, []byte("server:\n  addr: 127.0.0.1:9000\n"), 0o600))

	cfg, err := Load(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.Server.Addr, "127.0.0.1:9000")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertError(t, err)
}

// TestConfig_Request verifies requests carry the configured options
func TestConfig_Request(t *testing.T) {
	cfg := NewConfigBuilder().
		WithThreads(4).
		WithHash(256).
		WithMultiPV(2).
		WithSearch("depth", 18).
		Build()

	req, err := cfg.Request("", []string{"e2e4"})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, req, engine.Request{
		Moves:    []string{"e2e4"},
		Search:   engine.Depth(18),
		Threads:  4,
		HashSize: 256,
		MultiPV:  2,
	})

	cfg.Search.Kind = "bogus"
	_, err = cfg.Request("", nil)
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, len(cfg.ProtocolOptions()), 1)
}

// TestLogConfig_Logger verifies console and JSON loggers
func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	log, err := (&LogConfig{Level: "warn", Format: LogJSON}).Logger(&buf)
	testutil.AssertNoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("engine", "sf").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	testutil.AssertContains(t, out, `"engine":"sf"`)

	buf.Reset()
	log, err = NewLogConfig().Logger(&buf)
	testutil.AssertNoError(t, err)
	log.Info().Msg("console line")
	testutil.AssertContains(t, buf.String(), "console line")

	_, err = (&LogConfig{Level: "info", Format: "xml"}).Logger(&buf)
	testutil.AssertError(t, err)
}

// TestConfigBuilder verifies the builder pattern works correctly
func TestConfigBuilder(t *testing.T) {
	cfg := NewConfigBuilder().
		WithEngine("/opt/lc0", "--weights=net.pb").
		WithDepthCeiling(0).
		WithLogLevel("debug").
		WithLogFormat(LogJSON).
		WithJSONOutput(true).
		WithPrecision(1).
		WithServerAddr(":9090").
		WithWorkers(3).
		WithCacheCapacity(100).
		Build()

	if cfg.Engine.Path != "/opt/lc0" || len(cfg.Engine.Args) != 1 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Engine.DepthCeiling != 0 {
		t.Errorf("DepthCeiling = %d, want 0", cfg.Engine.DepthCeiling)
	}
	if !cfg.Output.JSON || cfg.Output.Precision != 1 {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if cfg.Server.Addr != ":9090" || cfg.Batch.Workers != 3 || cfg.Batch.CacheCapacity != 100 {
		t.Errorf("Server/Batch = %+v/%+v", cfg.Server, cfg.Batch)
	}
	testutil.AssertNoError(t, cfg.Validate())
}
