package config

const (
	defaultWorkingDir        = "~/.local/share/cadenza"
	defaultLogDir            = "~/.local/share/cadenza/logs"
	defaultSocketPath        = "~/.local/share/cadenza/cadenzad.sock"
	defaultMotherEndpoint    = "https://app.aimi.fm"
	defaultMotherRole        = "aimi_user"
	defaultMotherTimeout     = 30
	defaultSampleRate        = 48000
	defaultTempo             = 120.0
	defaultDeliveryBuffer    = 256
	defaultRequestTimeout    = 30
	defaultWorkerInboxSize   = 64
	defaultWorkerSyncTimeout = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkingDir: defaultWorkingDir,
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
		},
		Mother: Mother{
			Endpoint:       defaultMotherEndpoint,
			Role:           defaultMotherRole,
			RequestTimeout: defaultMotherTimeout,
		},
		Audio: Audio{
			SampleRate:   defaultSampleRate,
			DefaultTempo: defaultTempo,
		},
		Bus: Bus{
			DeliveryBuffer: defaultDeliveryBuffer,
			RequestTimeout: defaultRequestTimeout,
		},
		Workers: Workers{
			InboxSize:   defaultWorkerInboxSize,
			SyncTimeout: defaultWorkerSyncTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
