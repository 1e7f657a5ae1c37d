package sentryotel

type config struct {
	logger Logger
	loader Loader
	probes []Probe
}

// Option configures a Converter or a Registrar. Options that make no
// sense for one of them are ignored there.
type Option func(*config)

func newConfig(opts []Option) config {
	c := config{
		logger: NopLogger,
		loader: LoadSentry,
		probes: DefaultProbes,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger sets the diagnostics sink. A nil Logger means NopLogger.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = NopLogger
		}
		c.logger = logger
	}
}

// WithLoader replaces LoadSentry as the way the Registrar gets a handle
// on the error reporting SDK.
func WithLoader(loader Loader) Option {
	return func(c *config) {
		c.loader = loader
	}
}

// WithProbes replaces DefaultProbes. Probes are tried in order.
func WithProbes(probes ...Probe) Option {
	return func(c *config) {
		c.probes = probes
	}
}
