package lwconfig

import "fmt"

// DefaultGraceMultiplier matches the original's hardcoded grace-period
// factor, which this module exposes as a configuration knob instead.
const DefaultGraceMultiplier = 2

// DefaultListenPort is the default LWM2M CoAP port.
const DefaultListenPort = 5683

// Config controls how the server binary starts up: the listen socket, the
// Server Loop's driving strategy, grace-period scaling, optional mDNS
// advertisement, and logging.
type Config struct {
	// ListenAddress is the address to bind, e.g. ":5683" or "0.0.0.0:5683".
	// Empty means "any interface" on DefaultListenPort.
	ListenAddress string `yaml:"listen_address"`

	// AddressFamily is "udp4" or "udp6", the Go analogue of an
	// AF_INET/AF_INET6 configuration knob.
	AddressFamily string `yaml:"address_family"`

	// Threaded selects server.Config.Threaded.
	Threaded bool `yaml:"threaded"`

	// GraceMultiplier scales a device's lifetime into its grace deadline.
	// Zero means DefaultGraceMultiplier.
	GraceMultiplier int `yaml:"grace_multiplier"`

	// Discovery holds the optional mDNS advertisement settings.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Log holds structured-logging settings.
	Log LogConfig `yaml:"log"`
}

// DiscoveryConfig controls lwdiscovery advertisement.
type DiscoveryConfig struct {
	// Enabled turns mDNS advertisement on or off. Disabled by default.
	Enabled bool `yaml:"enabled"`

	// ServerName is the advertised endpoint name. Validate rejects an empty
	// ServerName when Enabled is true.
	ServerName string `yaml:"server_name"`

	// Version is the advertised LWM2M enabler version.
	Version string `yaml:"version"`
}

// LogConfig controls where and how verbosely the server logs.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// FilePath, if set, additionally writes CBOR-encoded structured events
	// to this file via lwlog.FileLogger.
	FilePath string `yaml:"file_path"`
}

// Default returns a Config with every field set to its documented default.
func Default() *Config {
	return &Config{
		ListenAddress:   fmt.Sprintf(":%d", DefaultListenPort),
		AddressFamily:   "udp4",
		GraceMultiplier: DefaultGraceMultiplier,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	switch c.AddressFamily {
	case "udp4", "udp6":
	default:
		return fmt.Errorf("lwconfig: address_family must be \"udp4\" or \"udp6\", got %q", c.AddressFamily)
	}
	if c.GraceMultiplier < 0 {
		return fmt.Errorf("lwconfig: grace_multiplier must be >= 0, got %d", c.GraceMultiplier)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("lwconfig: log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}
	if c.Discovery.Enabled && c.Discovery.ServerName == "" {
		return fmt.Errorf("lwconfig: discovery.server_name is required when discovery.enabled is true")
	}
	return nil
}

// Error wraps a configuration loading failure with the file it came from.
type Error struct {
	File    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
