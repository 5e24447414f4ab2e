package config

// ConfigBuilder provides a fluent API for building Config instances.
type ConfigBuilder struct {
	cfg *Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: NewConfig(),
	}
}

// Build returns the built Config.
func (b *ConfigBuilder) Build() *Config {
	return b.cfg
}

// WithEngine sets the engine executable and its arguments.
func (b *ConfigBuilder) WithEngine(path string, args ...string) *ConfigBuilder {
	b.cfg.Engine.Path = path
	b.cfg.Engine.Args = args
	return b
}

// WithThreads sets the engine thread count.
func (b *ConfigBuilder) WithThreads(n int) *ConfigBuilder {
	b.cfg.Engine.Threads = n
	return b
}

// WithHash sets the engine hash size in megabytes.
func (b *ConfigBuilder) WithHash(mb int) *ConfigBuilder {
	b.cfg.Engine.Hash = mb
	return b
}

// WithMultiPV sets the number of principal variations.
func (b *ConfigBuilder) WithMultiPV(n int) *ConfigBuilder {
	b.cfg.Engine.MultiPV = n
	return b
}

// WithDepthCeiling sets the depth at which searches are stopped.
func (b *ConfigBuilder) WithDepthCeiling(depth int) *ConfigBuilder {
	b.cfg.Engine.DepthCeiling = depth
	return b
}

// WithSearch sets the default stopping criterion.
func (b *ConfigBuilder) WithSearch(kind string, value int) *ConfigBuilder {
	b.cfg.Search.Kind = kind
	b.cfg.Search.Value = value
	return b
}

// WithLogLevel sets the log level.
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.cfg.Log.Level = level
	return b
}

// WithLogFormat sets the log format.
func (b *ConfigBuilder) WithLogFormat(format string) *ConfigBuilder {
	b.cfg.Log.Format = format
	return b
}

// WithJSONOutput enables JSON output.
func (b *ConfigBuilder) WithJSONOutput(enabled bool) *ConfigBuilder {
	b.cfg.Output.JSON = enabled
	return b
}

// WithPrecision sets the score precision.
func (b *ConfigBuilder) WithPrecision(decimals int) *ConfigBuilder {
	b.cfg.Output.Precision = decimals
	return b
}

// WithServerAddr sets the HTTP listen address.
func (b *ConfigBuilder) WithServerAddr(addr string) *ConfigBuilder {
	b.cfg.Server.Addr = addr
	return b
}

// WithWorkers sets the number of batch workers.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	b.cfg.Batch.Workers = n
	return b
}

// WithCacheCapacity sets the evaluation cache capacity.
func (b *ConfigBuilder) WithCacheCapacity(n int) *ConfigBuilder {
	b.cfg.Batch.CacheCapacity = n
	return b
}
