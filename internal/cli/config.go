package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	WSURL     string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

// LoadConfig builds the configuration from defaults, an optional config
// file (~/.fableroom/config.yaml) and FABLEROOM_* environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("server", "http://localhost:3000")
	v.SetDefault("ws", "ws://localhost:3000/ws")
	v.SetDefault("token_file", defaultTokenFile())
	v.SetDefault("output", "text")

	v.SetEnvPrefix("FABLEROOM")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".fableroom"))
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		ServerURL: v.GetString("server"),
		WSURL:     v.GetString("ws"),
		Token:     v.GetString("token"),
		TokenFile: v.GetString("token_file"),
		Output:    v.GetString("output"),
		Verbose:   v.GetBool("verbose"),
	}, nil
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = string(data)
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fableroom/token"
	}
	return filepath.Join(home, ".fableroom", "token")
}
