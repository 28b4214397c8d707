package entities

// Defaults used when no configuration file overrides them.
const (
	DefaultProgramName     = "hello"
	DefaultHostNamespace   = "mosaic"
	DefaultStartExport     = "_start"
	DefaultHandleKeyExport = "handle_key"
	DefaultQuitKey         = "q"
	DefaultSeed            = "Here is a spicy input!"
	DefaultGuestMount      = "/"
	DefaultPreopenDir      = "."
	DefaultLogLevel        = "warn"
	DefaultLogFormat       = "text"

	// DefaultMaxRequestSize limits host function payloads read from guest
	// memory (1MB).
	DefaultMaxRequestSize = 1 * 1024 * 1024
)

// DefaultCandidates is the built-in list of modules offered by the menu.
var DefaultCandidates = []string{
	"target/wasm32-wasi/debug/module.wasm",
	"asmscript/build/index.wasm",
	"wapm_packages/_/cowsay@0.2.0/target/wasm32-wasi/release/cowsay.wasm",
}

// Config represents loader configuration. Every field is optional in a
// configuration file; missing fields keep their defaults.
type Config struct {
	// Env holds environment variables passed to the guest.
	Env map[string]string `json:"env,omitempty" jsonschema:"description=Environment variables visible to the guest"`

	// Candidates are module paths or doublestar patterns offered by the menu.
	Candidates []string `json:"candidates,omitempty" validate:"required,min=1,dive,required" jsonschema:"minItems=1"`

	// Args are the guest arguments following the program name.
	Args []string `json:"args,omitempty"`

	// ProgramName is the guest's argv[0].
	ProgramName string `json:"program_name,omitempty" validate:"required"`

	// PreopenDir is the host directory exposed to the guest.
	PreopenDir string `json:"preopen_dir,omitempty" validate:"required"`

	// GuestMount is where PreopenDir appears inside the guest.
	GuestMount string `json:"guest_mount,omitempty" validate:"required,startswith=/"`

	// Seed is written to the guest's input once before priming.
	Seed string `json:"seed,omitempty"`

	// QuitKey ends the session; it is never delivered to the guest.
	QuitKey string `json:"quit_key,omitempty" validate:"required"`

	// HostNamespace is the import module holding host functions.
	HostNamespace string `json:"host_namespace,omitempty" validate:"required,ne=wasi_snapshot_preview1,ne=wasi_unstable"`

	// StartExport is the guest's main entry point.
	StartExport string `json:"start_export,omitempty" validate:"required"`

	// HandleKeyExport is called once per interaction cycle.
	HandleKeyExport string `json:"handle_key_export,omitempty" validate:"required,nefield=StartExport"`

	// LogLevel is the logging verbosity level.
	LogLevel string `json:"log_level,omitempty" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`

	// LogFormat selects the slog handler.
	LogFormat string `json:"log_format,omitempty" validate:"oneof=text json" jsonschema:"enum=text,enum=json"`

	// LogFile receives logs; empty means stderr.
	LogFile string `json:"log_file,omitempty"`

	// MaxRequestSize limits host function payloads read from guest memory.
	MaxRequestSize uint32 `json:"max_request_size,omitempty" validate:"gt=0"`

	// MaxOutputSize bounds the guest output buffer per cycle; zero is unlimited.
	MaxOutputSize int `json:"max_output_size,omitempty" validate:"gte=0"`

	// ExportTerminalSize adds COLUMNS and LINES to the guest environment.
	ExportTerminalSize bool `json:"export_terminal_size,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Candidates:         append([]string(nil), DefaultCandidates...),
		ProgramName:        DefaultProgramName,
		Args:               []string{"These are words of wisdom coming from the mighty Mosaic!"},
		Env:                map[string]string{"CLICOLOR_FORCE": "1"},
		PreopenDir:         DefaultPreopenDir,
		GuestMount:         DefaultGuestMount,
		Seed:               DefaultSeed,
		QuitKey:            DefaultQuitKey,
		HostNamespace:      DefaultHostNamespace,
		StartExport:        DefaultStartExport,
		HandleKeyExport:    DefaultHandleKeyExport,
		LogLevel:           DefaultLogLevel,
		LogFormat:          DefaultLogFormat,
		MaxRequestSize:     DefaultMaxRequestSize,
		ExportTerminalSize: true,
	}
}

// ConfigOption is a functional option for configuring the loader.
type ConfigOption func(*Config)

// WithCandidates replaces the menu candidates.
func WithCandidates(paths ...string) ConfigOption {
	return func(c *Config) {
		if len(paths) > 0 {
			c.Candidates = paths
		}
	}
}

// WithQuitKey sets the key that ends the session.
func WithQuitKey(key string) ConfigOption {
	return func(c *Config) {
		if key != "" {
			c.QuitKey = key
		}
	}
}

// WithSeed sets the priming input line.
func WithSeed(seed string) ConfigOption {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithEnv adds a guest environment variable.
func WithEnv(key, value string) ConfigOption {
	return func(c *Config) {
		if c.Env == nil {
			c.Env = make(map[string]string)
		}
		c.Env[key] = value
	}
}

// WithLogLevel sets the logging verbosity level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithTerminalSizeExport enables or disables COLUMNS/LINES in the guest env.
func WithTerminalSizeExport(enabled bool) ConfigOption {
	return func(c *Config) {
		c.ExportTerminalSize = enabled
	}
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
