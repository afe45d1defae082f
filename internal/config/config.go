package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultServiceURL is where the companion service listens.
	DefaultServiceURL = "http://127.0.0.1:18421"

	// DefaultHealthPath is probed until the service answers 2xx.
	DefaultHealthPath = "/api/keys/status"

	// DefaultServiceName is the container name used for liveness checks and logs.
	DefaultServiceName = "cerebro-companion"

	// DefaultRemote and DefaultBranch identify the tracked upstream.
	DefaultRemote = "origin"
	DefaultBranch = "main"

	// DataDirEnv is the variable the service reads its data directory from.
	DataDirEnv = "CEREBRO_DATA_DIR"

	// DefaultConfigFilename is looked up in the user config directory.
	DefaultConfigFilename = "launcher.yaml"

	// EngineModeCLI talks to the engine through the docker binary.
	EngineModeCLI = "cli"
	// EngineModeAPI talks to the engine through the Docker API socket.
	EngineModeAPI = "api"

	appDirName = "cerebro-companion"
)

var (
	errBranchRequired     = errors.New("branch must be provided")
	errServiceNameMissing = errors.New("service name must be provided")
)

// Config is the explicit launcher configuration handed to every component.
type Config struct {
	// ProjectDir is the git checkout holding the compose file.
	ProjectDir string `yaml:"project_dir"`
	// DataDir is the persistent directory shared with the service.
	DataDir string `yaml:"data_dir"`
	// ServiceURL is the root URL opened in the browser.
	ServiceURL string `yaml:"service_url"`
	// HealthPath is appended to ServiceURL for readiness probes.
	HealthPath string `yaml:"health_path"`
	// ServiceName is the container name filter.
	ServiceName string `yaml:"service_name"`

	Compose ComposeConfig `yaml:"compose"`
	Engine  EngineConfig  `yaml:"engine"`
	Update  UpdateConfig  `yaml:"update"`
	Health  HealthConfig  `yaml:"health"`

	OpenBrowser bool   `yaml:"open_browser"`
	PauseOnExit bool   `yaml:"pause_on_exit"`
	HistoryDB   string `yaml:"history_db"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// ComposeConfig selects the compose project.
type ComposeConfig struct {
	// File is relative to ProjectDir unless absolute; empty means compose's default lookup.
	File        string `yaml:"file"`
	ProjectName string `yaml:"project_name"`
}

// EngineConfig selects how the container engine is reached.
type EngineConfig struct {
	Mode          string `yaml:"mode"`
	Binary        string `yaml:"binary"`
	ComposeBinary string `yaml:"compose_binary"`
}

// UpdateConfig controls the update check and prompt.
type UpdateConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Remote    string `yaml:"remote"`
	Branch    string `yaml:"branch"`
	AcceptKey string `yaml:"accept_key"`
}

// HealthConfig is the readiness polling policy.
type HealthConfig struct {
	Interval         time.Duration `yaml:"interval"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	DetectCrash      bool          `yaml:"detect_crash"`
	SoftTimeoutTicks int           `yaml:"soft_timeout_ticks"`
}

// Default returns the canonical configuration.
func Default() Config {
	return Config{
		ProjectDir:  ".",
		DataDir:     defaultDataDir(),
		ServiceURL:  DefaultServiceURL,
		HealthPath:  DefaultHealthPath,
		ServiceName: DefaultServiceName,
		Engine: EngineConfig{
			Mode:   EngineModeCLI,
			Binary: "docker",
		},
		Update: UpdateConfig{
			Enabled:   true,
			Remote:    DefaultRemote,
			Branch:    DefaultBranch,
			AcceptKey: "y",
		},
		Health: HealthConfig{
			Interval:         time.Second,
			RequestTimeout:   2 * time.Second,
			DetectCrash:      true,
			SoftTimeoutTicks: 60,
		},
		OpenBrowser: true,
		PauseOnExit: true,
	}
}

// Override adjusts the configuration after the file and environment are applied
type Override func(*Config)

// Load builds configuration from defaults, an optional YAML file, the
// environment and finally the overrides (command-line flags). A missing file
// at the default location is not an error.
func Load(path string, overrides ...Override) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		contents, err := os.ReadFile(filepath.Clean(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(contents, &cfg); err != nil {
				return Config{}, fmt.Errorf("unmarshal settings %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read settings: %w", err)
		}
	}

	cfg = cfg.applyEnv()
	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns the settings file location under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName, DefaultConfigFilename)
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(dir, appDirName, "data")
}

func (c Config) applyEnv() Config {
	c.ProjectDir = getEnv("CEREBRO_PROJECT_DIR", c.ProjectDir)
	c.DataDir = getEnv(DataDirEnv, c.DataDir)
	c.ServiceURL = getEnv("CEREBRO_SERVICE_URL", c.ServiceURL)
	c.ServiceName = getEnv("CEREBRO_SERVICE_NAME", c.ServiceName)
	c.Compose.File = getEnv("CEREBRO_COMPOSE_FILE", c.Compose.File)
	c.Compose.ProjectName = getEnv("CEREBRO_COMPOSE_PROJECT", c.Compose.ProjectName)
	c.Engine.Mode = getEnv("CEREBRO_ENGINE_MODE", c.Engine.Mode)
	c.Update.Enabled = getEnvBool("CEREBRO_UPDATE_ENABLED", c.Update.Enabled)
	c.Update.Branch = getEnv("CEREBRO_BRANCH", c.Update.Branch)
	c.Health.Interval = getEnvDuration("CEREBRO_HEALTH_INTERVAL", c.Health.Interval)
	c.Health.SoftTimeoutTicks = getEnvInt("CEREBRO_HEALTH_SOFT_TIMEOUT_TICKS", c.Health.SoftTimeoutTicks)
	c.Health.DetectCrash = getEnvBool("CEREBRO_HEALTH_DETECT_CRASH", c.Health.DetectCrash)
	c.OpenBrowser = getEnvBool("CEREBRO_OPEN_BROWSER", c.OpenBrowser)
	c.HistoryDB = getEnv("CEREBRO_HISTORY_DB", c.HistoryDB)
	c.MetricsAddr = getEnv("CEREBRO_METRICS_ADDR", c.MetricsAddr)
	return c
}

// Validate checks required fields and fills defaults for optional ones.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Update.Branch) == "" {
		return errBranchRequired
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		return errServiceNameMissing
	}

	u, err := url.Parse(c.ServiceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid service url %q", c.ServiceURL)
	}
	c.ServiceURL = strings.TrimRight(c.ServiceURL, "/")

	switch c.Engine.Mode {
	case "":
		c.Engine.Mode = EngineModeCLI
	case EngineModeCLI, EngineModeAPI:
	default:
		return fmt.Errorf("unknown engine mode %q (expected %s or %s)", c.Engine.Mode, EngineModeCLI, EngineModeAPI)
	}

	if c.Engine.Binary == "" {
		c.Engine.Binary = "docker"
	}
	if c.Update.Remote == "" {
		c.Update.Remote = DefaultRemote
	}
	if c.Update.AcceptKey == "" {
		c.Update.AcceptKey = "y"
	}
	if c.HealthPath == "" {
		c.HealthPath = DefaultHealthPath
	}
	if !strings.HasPrefix(c.HealthPath, "/") {
		c.HealthPath = "/" + c.HealthPath
	}
	if c.Health.Interval <= 0 {
		c.Health.Interval = time.Second
	}
	if c.Health.RequestTimeout <= 0 {
		c.Health.RequestTimeout = 2 * time.Second
	}
	if c.Health.SoftTimeoutTicks < 0 {
		c.Health.SoftTimeoutTicks = 0
	}
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(c.DataDir, "launcher-history.db")
	}

	return nil
}

// HealthURL is the readiness endpoint.
func (c Config) HealthURL() string {
	return c.ServiceURL + c.HealthPath
}

// ComposeFilePath resolves the compose file against the project directory.
func (c Config) ComposeFilePath() string {
	if c.Compose.File == "" || filepath.IsAbs(c.Compose.File) {
		return c.Compose.File
	}
	return filepath.Join(c.ProjectDir, c.Compose.File)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
