package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sigil-io/agent/internal/models"
)

// Config represents the application configuration structure
type Config struct {

	// Identity provider and session service settings
	Provider ProviderConfig `mapstructure:"provider"`

	// Local daemon settings
	Server ServerConfig `mapstructure:"server"`

	// Where session material is persisted
	Keystore KeystoreConfig `mapstructure:"keystore"`

	Logging LoggingConfig `mapstructure:"logging"`

	logger agentLogger
}

type ProviderConfig struct {
	Network     string         `mapstructure:"network"`
	ClientID    string         `mapstructure:"client_id"`
	RedirectURL string         `mapstructure:"redirect_url"`
	WhiteLabel  map[string]any `mapstructure:"white_label"`
	LoginConfig map[string]any `mapstructure:"login_config"`

	// AuthURL and ApiURL override the per-network defaults, mainly for
	// self hosted deployments and tests.
	AuthURL string        `mapstructure:"auth_url"`
	ApiURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Host     string             `mapstructure:"host"`
	Port     int                `mapstructure:"port"`
	Limits   ServerLimitsConfig `mapstructure:"limits"`
	Security SecurityConfig     `mapstructure:"security"`
}

type ServerLimitsConfig struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type KeystoreConfig struct {
	Path       string `mapstructure:"path"`
	Passphrase string `mapstructure:"passphrase"`

	// Ephemeral keeps everything in memory; nothing survives a restart.
	Ephemeral bool `mapstructure:"ephemeral"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" default:"info"`
	Format string `mapstructure:"format" default:"text"`
}

func (c *Config) Validate() error {
	if len(c.Provider.ClientID) == 0 {
		return fmt.Errorf("provider.client_id is required")
	}
	if _, err := models.ParseNetwork(c.Provider.Network); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}

func (c *Config) GetNetwork() models.Network {
	network, err := models.ParseNetwork(c.Provider.Network)
	if err != nil {
		return models.NetworkMainnet
	}
	return network
}

// GetAuthBaseUrl is the browser-facing login origin, an explicit override
// or the network default.
func (c *Config) GetAuthBaseUrl() string {
	if len(c.Provider.AuthURL) > 0 {
		return strings.TrimSuffix(c.Provider.AuthURL, "/")
	}
	return c.GetNetwork().GetAuthBaseUrl()
}

// GetApiBaseUrl is the session service origin.
func (c *Config) GetApiBaseUrl() string {
	if len(c.Provider.ApiURL) > 0 {
		return strings.TrimSuffix(c.Provider.ApiURL, "/")
	}
	return c.GetNetwork().GetApiBaseUrl()
}

func (c *Config) GetProviderTimeout() time.Duration {
	if c.Provider.Timeout > 0 {
		return c.Provider.Timeout
	}
	return 30 * time.Second
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetLocalServerUrl() string {
	hostname := c.Server.Host
	if hostname == "0.0.0.0" {
		hostname = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", hostname, c.Server.Port)
}

// GetRedirectUrl is where the provider sends the browser back to. It
// defaults to the local daemon's callback page.
func (c *Config) GetRedirectUrl() string {
	if len(c.Provider.RedirectURL) > 0 {
		return c.Provider.RedirectURL
	}
	return c.GetLocalServerUrl() + "/callback"
}

func (c *Config) GetInitParams() models.InitParams {
	return models.InitParams{
		ClientID:    c.Provider.ClientID,
		Network:     c.GetNetwork(),
		RedirectURL: c.GetRedirectUrl(),
		WhiteLabel:  c.Provider.WhiteLabel,
		LoginConfig: c.Provider.LoginConfig,
	}
}

// GetKeystorePath resolves the keystore location, defaulting under the
// user's config directory.
func (c *Config) GetKeystorePath() string {
	if len(c.Keystore.Path) > 0 {
		return c.Keystore.Path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "keystore.yaml")
	}
	return filepath.Join(home, ".config", "sigil", "keystore.yaml")
}

func (c *Config) GetLogger() *agentLogger {
	return &c.logger
}

// TemplateData represents data passed to HTML templates
type TemplateData struct {
	Config      *Config
	ServiceName string
	Version     string
	Status      string
	Uptime      string
}
