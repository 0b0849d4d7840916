package config

import (
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/sigil-io/agent/internal/common"
)

func DefaultConfig() *Config {

	v := viper.New()

	// Set default values
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("error unmarshaling default config: %v", err)
	}

	return &config
}

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	if err := setupViperConfig(v, configFile); err != nil {
		return nil, err
	}

	bindEnvironmentVariables(v)

	config, err := readAndUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	if err := validateProviderUrls(config); err != nil {
		return nil, err
	}

	if err := setupLogging(config, v); err != nil {
		return nil, err
	}

	return config, nil
}

// validateProviderUrls rejects malformed URL overrides up front, before
// they surface as confusing transport errors mid-flow.
func validateProviderUrls(config *Config) error {
	urls := map[string]string{
		"provider.auth_url":     config.Provider.AuthURL,
		"provider.api_url":      config.Provider.ApiURL,
		"provider.redirect_url": config.Provider.RedirectURL,
	}

	for key, value := range urls {
		if len(value) > 0 && !common.IsValidURL(value) {
			return fmt.Errorf("invalid url for %s: %s", key, value)
		}
	}

	return nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() error {
	if err := gotenv.Load(); err != nil {
		// .env file not found, that's okay - continue with other sources
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}
	return nil
}

// setupViperConfig configures viper with file paths and defaults
func setupViperConfig(v *viper.Viper, configFile string) error {
	// Set configuration file details
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/sigil")
	v.AddConfigPath("~/.config/sigil")

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	if err := setupHomeConfigPath(v); err != nil {
		return err
	}

	// Set default values
	setDefaults(v)

	// Set environment variable settings
	v.SetEnvPrefix("SIGIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)

	return nil
}

// setupHomeConfigPath adds the home directory config path if available
func setupHomeConfigPath(v *viper.Viper) error {
	home := os.Getenv("HOME")
	if len(home) == 0 {
		return nil
	}

	usr, err := user.Current()
	if err != nil {
		logrus.Errorf("Failed to get current user: %v", err)
		return nil
	}

	configPath := filepath.Join(usr.HomeDir, ".config", "sigil")
	v.AddConfigPath(configPath)

	// Check if the folder exists and create it if it does not exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(configPath, 0700); err != nil {
			logrus.Errorf("Failed to create config directory: %v", err)
		}
	}

	return nil
}

// bindEnvironmentVariables binds all environment variables to viper
func bindEnvironmentVariables(v *viper.Viper) {

	// Provider environment variables
	v.BindEnv("provider.network", "SIGIL_PROVIDER_NETWORK")
	v.BindEnv("provider.client_id", "SIGIL_PROVIDER_CLIENT_ID")
	v.BindEnv("provider.redirect_url", "SIGIL_PROVIDER_REDIRECT_URL")
	v.BindEnv("provider.auth_url", "SIGIL_PROVIDER_AUTH_URL")
	v.BindEnv("provider.api_url", "SIGIL_PROVIDER_API_URL")
	v.BindEnv("provider.timeout", "SIGIL_PROVIDER_TIMEOUT")

	bindServerEnvVars(v)
	bindKeystoreEnvVars(v)
	bindLoggingEnvVars(v)
}

// bindServerEnvVars binds local daemon environment variables
func bindServerEnvVars(v *viper.Viper) {
	v.BindEnv("server.host", "SIGIL_SERVER_HOST")
	v.BindEnv("server.port", "SIGIL_SERVER_PORT")
}

// bindKeystoreEnvVars binds keystore environment variables
func bindKeystoreEnvVars(v *viper.Viper) {
	v.BindEnv("keystore.path", "SIGIL_KEYSTORE_PATH")
	v.BindEnv("keystore.passphrase", "SIGIL_KEYSTORE_PASSPHRASE")
	v.BindEnv("keystore.ephemeral", "SIGIL_KEYSTORE_EPHEMERAL")
}

// bindLoggingEnvVars binds logging configuration environment variables
func bindLoggingEnvVars(v *viper.Viper) {
	v.BindEnv("logging.level", "SIGIL_LOGGING_LEVEL")
	v.BindEnv("logging.format", "SIGIL_LOGGING_FORMAT")
}

// readAndUnmarshalConfig reads the configuration file and unmarshals it
func readAndUnmarshalConfig(v *viper.Viper) (*Config, error) {
	// Read configuration file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setupLogging configures the logging system based on the config
func setupLogging(config *Config, v *viper.Viper) error {
	// Set logging level
	logrusLevel, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(logrusLevel)
	config.logger = *NewAgentLogger()
	logrus.AddHook(&config.logger)

	// Set logging format
	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	// Dump out the config settings if in debug mode
	if logrusLevel >= logrus.DebugLevel {
		for key, value := range v.AllSettings() {
			if key == "keystore" {
				continue
			}
			logrus.Debugf("Config '%s': %v\n", key, value)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {

	// Provider defaults
	v.SetDefault("provider.network", "mainnet")
	v.SetDefault("provider.timeout", "30s")

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 4286)

	// Security defaults
	v.SetDefault("server.security.cors.allowed_origins", []string{"https://auth.sigil.io", "https://*.sigil.io"})
	v.SetDefault("server.security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("server.security.cors.allowed_headers", []string{"Content-Type"})
	v.SetDefault("server.security.cors.max_age", 86400)

	// Server limits
	v.SetDefault("server.limits.read_timeout", "10s")
	v.SetDefault("server.limits.write_timeout", "10s")
	v.SetDefault("server.limits.idle_timeout", "120s")

	// Keystore defaults
	v.SetDefault("keystore.ephemeral", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
