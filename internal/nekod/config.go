package nekod

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for nekod.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Modules  ModulesConfig  `toml:"modules"`
	Backends BackendsConfig `toml:"backends"`
}

// ServerConfig defines shared node settings.
type ServerConfig struct {
	Broker    string     `toml:"broker"`
	NodeID    string     `toml:"node_id"`
	Thread    string     `toml:"thread"`
	TopicBase string     `toml:"topic_base"`
	Feed      string     `toml:"feed"`
	FeedURL   string     `toml:"feed_url"`
	PrefsPath string     `toml:"prefs_path"`
	TLS       TLSConfig  `toml:"tls"`
	Auth      AuthConfig `toml:"auth"`
}

// LoggingConfig describes daemon logging options.
type LoggingConfig struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`
	Output    string `toml:"output"`
	AddSource bool   `toml:"add_source"`
	UTC       bool   `toml:"utc"`
}

// TLSConfig holds TLS paths for the broker connection.
type TLSConfig struct {
	CA   string `toml:"ca"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

// AuthConfig holds broker credentials.
type AuthConfig struct {
	User string `toml:"user"`
	Pass string `toml:"pass"`
}

// ModulesConfig holds module configurations.
type ModulesConfig struct {
	Watch        WatchConfig        `toml:"watch"`
	EmbeddedMQTT EmbeddedMQTTConfig `toml:"embedded_mqtt"`
}

// WatchConfig configures the watch module.
type WatchConfig struct {
	Enabled      bool `toml:"enabled"`
	PublishState bool `toml:"publish_state"`
}

// EmbeddedMQTTConfig configures the embedded MQTT broker.
type EmbeddedMQTTConfig struct {
	Enabled        bool   `toml:"enabled"`
	Listen         string `toml:"listen"`
	AllowAnonymous bool   `toml:"allow_anonymous"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	TLSCA          string `toml:"tls_ca"`
	TLSCert        string `toml:"tls_cert"`
	TLSKey         string `toml:"tls_key"`
}

// BackendsConfig selects which playback backends the node exposes.
type BackendsConfig struct {
	Raw RawBackendConfig `toml:"raw"`
}

// RawBackendConfig configures the local media surface.
type RawBackendConfig struct {
	Enabled     bool   `toml:"enabled"`
	Driver      string `toml:"driver"`
	BaseURL     string `toml:"base_url"`
	Password    string `toml:"password"`
	Pipeline    string `toml:"pipeline"`
	Device      string `toml:"device"`
	PlayYouTube bool   `toml:"play_youtube"`
}

// LoadConfig loads a config file from path.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, errors.New("config path is a directory")
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the default config location.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "neko", "nekod.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "neko", "nekod.toml"), nil
}
