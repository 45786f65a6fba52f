package testsupport

import (
	"path/filepath"
	"testing"

	"cadenza/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkingDir = filepath.Join(base, "working")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(base, "cadenzad.sock")
	cfgVal.Mother.Endpoint = "http://127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMotherEndpoint points the config at a test server.
func WithMotherEndpoint(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Mother.Endpoint = endpoint
	}
}

// WithDeliveryBuffer overrides the bus delivery buffer size.
func WithDeliveryBuffer(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Bus.DeliveryBuffer = size
	}
}

// WithSampleRate overrides the render clock sample rate.
func WithSampleRate(rate int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.SampleRate = rate
	}
}

// WithNotifySink routes terminal notifications to an NDJSON file under the
// test's temp directory. Read the chosen path from cfg.Paths.NotifySocketPath.
func WithNotifySink() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.NotifySocketPath = filepath.Join(b.baseDir, "notify.ndjson")
	}
}
