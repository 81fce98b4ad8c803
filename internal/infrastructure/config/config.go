package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Auth      AuthConfig
	Printers  PrintersConfig
	Render    RenderConfig
	Spool     SpoolConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Profiler  ProfilerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// Addr returns the listen address in host:port form.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// AuthConfig holds the optional shared-token settings. When both fields are
// empty, requests are admitted on the local-origin check alone.
type AuthConfig struct {
	Token     string // plain token, compared in constant time
	TokenHash string // bcrypt hash of the token, preferred over Token
}

// Enabled reports whether token checking is configured at all.
func (a *AuthConfig) Enabled() bool {
	return a.Token != "" || a.TokenHash != ""
}

// PrintersConfig maps the two supported page sizes to printer queue names.
// Empty values mean the size has no printer until one is configured.
type PrintersConfig struct {
	A3 string
	A4 string
}

// RenderConfig holds HTML-to-PDF rendering configuration
type RenderConfig struct {
	Engine        string        // chromium (subprocess) or devtools
	Binary        string        // browser binary path, overrides autodetection
	RemoteURL     string        // devtools endpoint of an external browser
	NoSandbox     bool          // run the browser without its sandbox (containers)
	Timeout       time.Duration // per-job rendering deadline
	TempDir       string        // scratch directory, empty = system temp
	SweepInterval time.Duration // how often leftover scratch files are swept
	SweepMaxAge   time.Duration // scratch files older than this are removed
}

// EffectiveTimeout returns the rendering deadline, falling back to 30s when
// the configured value is unset or non-positive.
func (r *RenderConfig) EffectiveTimeout() time.Duration {
	if r.Timeout <= 0 {
		return 30 * time.Second
	}
	return r.Timeout
}

// SpoolConfig holds the CUPS command-line tool locations
type SpoolConfig struct {
	LpPath        string
	LpstatPath    string
	LpoptionsPath string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
}

// ProfilerConfig holds Pyroscope continuous profiling configuration
type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PRINTBRIDGE_ prefix (e.g., PRINTBRIDGE_AUTH_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := newViper()
	if err := readConfigFile(v); err != nil {
		return nil, err
	}
	return build(v)
}

// LoadAndWatch loads configuration like Load and additionally re-reads the
// config file whenever it changes on disk, publishing each valid snapshot to
// the returned Store. Printer assignments can therefore change without a
// restart. onReload, if non-nil, is invoked after every reload attempt.
func LoadAndWatch(onReload func(*Config, error)) (*Store, error) {
	v := newViper()
	if err := readConfigFile(v); err != nil {
		return nil, err
	}
	cfg, err := build(v)
	if err != nil {
		return nil, err
	}

	store := NewStore(cfg)
	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(fsnotify.Event) {
			next, err := build(v)
			if err == nil {
				store.Replace(next)
			}
			if onReload != nil {
				onReload(next, err)
			}
		})
		v.WatchConfig()
	}
	return store, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.printbridge")
	v.AddConfigPath("/etc/printbridge")

	v.SetEnvPrefix("PRINTBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}
	return nil
}

// build assembles a Config from the current viper state.
func build(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetString("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			MaxHeaderBytes: v.GetInt("server.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("server.trusted_proxies"),
		},
		Auth: AuthConfig{
			Token:     v.GetString("auth.token"),
			TokenHash: v.GetString("auth.token_hash"),
		},
		Printers: PrintersConfig{
			A3: v.GetString("printers.a3"),
			A4: v.GetString("printers.a4"),
		},
		Render: RenderConfig{
			Engine:        v.GetString("render.engine"),
			Binary:        v.GetString("render.binary"),
			RemoteURL:     v.GetString("render.remote_url"),
			NoSandbox:     v.GetBool("render.no_sandbox"),
			Timeout:       v.GetDuration("render.timeout"),
			TempDir:       v.GetString("render.temp_dir"),
			SweepInterval: v.GetDuration("render.sweep_interval"),
			SweepMaxAge:   v.GetDuration("render.sweep_max_age"),
		},
		Spool: SpoolConfig{
			LpPath:        v.GetString("spool.lp_path"),
			LpstatPath:    v.GetString("spool.lpstat_path"),
			LpoptionsPath: v.GetString("spool.lpoptions_path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Profiler: ProfilerConfig{
			Enabled:           v.GetBool("profiler.enabled"),
			ServerAddress:     v.GetString("profiler.server_address"),
			ApplicationName:   v.GetString("profiler.application_name"),
			BasicAuthUser:     v.GetString("profiler.basic_auth_user"),
			BasicAuthPassword: v.GetString("profiler.basic_auth_password"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "print-bridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "9632"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	// Jobs render and spool synchronously inside the request, so the write
	// deadline must outlive the rendering deadline.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Render.Engine == "" {
		cfg.Render.Engine = "chromium"
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 30 * time.Second
	}
	if cfg.Render.SweepInterval == 0 {
		cfg.Render.SweepInterval = 10 * time.Minute
	}
	if cfg.Render.SweepMaxAge == 0 {
		cfg.Render.SweepMaxAge = time.Hour
	}
	if cfg.Spool.LpPath == "" {
		cfg.Spool.LpPath = "lp"
	}
	if cfg.Spool.LpstatPath == "" {
		cfg.Spool.LpstatPath = "lpstat"
	}
	if cfg.Spool.LpoptionsPath == "" {
		cfg.Spool.LpoptionsPath = "lpoptions"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Profiler.ApplicationName == "" {
		cfg.Profiler.ApplicationName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server.port must be a port number, got %q", c.Server.Port)
	}

	if c.Auth.Token != "" && c.Auth.TokenHash != "" {
		return fmt.Errorf("auth.token and auth.token_hash are mutually exclusive")
	}

	switch c.Render.Engine {
	case "chromium", "devtools":
	default:
		return fmt.Errorf("render.engine must be 'chromium' or 'devtools', got %q", c.Render.Engine)
	}
	if c.Render.SweepInterval < 0 {
		return fmt.Errorf("render.sweep_interval cannot be negative")
	}
	if c.Render.SweepMaxAge < 0 {
		return fmt.Errorf("render.sweep_max_age cannot be negative")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.Profiler.Enabled && c.Profiler.ServerAddress == "" {
		return fmt.Errorf("profiler.server_address is required when profiler.enabled is true")
	}

	return nil
}
