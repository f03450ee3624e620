package sessionkit

import (
	"errors"
	"net/http"

	"github.com/visadesk/sessionkit/internal/event"
	internalmetrics "github.com/visadesk/sessionkit/internal/metrics"
	"github.com/visadesk/sessionkit/store"
	"github.com/visadesk/sessionkit/transport"
	"go.uber.org/zap"
)

// Builder assembles a [Session]. Configure it during initialization, call
// Build once, then discard it.
type Builder struct {
	config        Config
	store         store.Store
	httpClient    *http.Client
	logger        *zap.Logger
	sink          EventSink
	onAuthExpired func()

	built bool
}

// New creates a builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the identity service root without replacing the rest of
// the configuration.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.HTTP.BaseURL = baseURL
	return b
}

// WithStore sets the credential store. Defaults to [store.NewMemory].
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithHTTPClient sets the underlying HTTP client used by the pipeline.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithEventSink enables the async event dispatcher and forwards session
// lifecycle events to sink.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	b.config.Events.Enabled = true
	return b
}

// WithOnAuthExpired registers the callback fired after an unrecoverable
// credential failure, once per failed refresh. The consumer typically
// navigates to its login view.
func (b *Builder) WithOnAuthExpired(fn func()) *Builder {
	b.onAuthExpired = fn
	return b
}

// WithMetricsEnabled toggles the in-process metrics core.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles bootstrap latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and constructs the session.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	creds := b.store
	if creds == nil {
		creds = store.NewMemory()
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics := internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Metrics.Enabled,
		EnableLatency: cfg.Metrics.EnableLatencyHistograms,
	})

	dispatcher := event.NewDispatcher(event.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, b.sink)

	s := &Session{
		cfg:           cfg,
		store:         creds,
		log:           logger,
		metrics:       metrics,
		events:        dispatcher,
		onAuthExpired: b.onAuthExpired,
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTP.Timeout}
	}

	pipeline, err := transport.New(transport.Config{
		BaseURL:         cfg.HTTP.BaseURL,
		HTTPClient:      httpClient,
		Credentials:     creds,
		RefreshPath:     cfg.Endpoints.Refresh,
		RequestIDHeader: cfg.HTTP.RequestIDHeader,
		Logger:          logger,
		Hooks: transport.Hooks{
			OnRefreshSuccess: func() { metrics.Inc(internalmetrics.MetricRefreshSuccess) },
			OnRefreshFailure: func() { metrics.Inc(internalmetrics.MetricRefreshFailure) },
			OnRetry:          func() { metrics.Inc(internalmetrics.MetricRetryAfterRefresh) },
			OnAuthExpired:    s.handleAuthExpired,
		},
	})
	if err != nil {
		dispatcher.Close()
		return nil, err
	}
	s.pipeline = pipeline

	b.built = true
	return s, nil
}
