package blink

import (
	"github.com/jinzhu/configor"
)

type Config struct {
	Blink struct {
		// key for which Network to sign for: mainnet, testnet10
		Network string `default:"testnet10" required:"true"`
		// cost ceiling for puzzle runs (diagnostics and bundle verification)
		MaxCost uint64 `default:"11000000000"`
	}

	WebAPI struct {
		Bind string `default:"localhost"`
		Port string `default:"9257"`
	}

	Store struct {
		DBFile string `default:"blink.db"`
	}

	// publishes built spend bundles for an external broadcaster
	Publisher struct {
		Enabled  bool   `default:"false"`
		Endpoint string `default:"tcp://127.0.0.1:28400"`
	}

	Loggers   map[string]LoggersConfig
	Callbacks map[string]CallbackConfig
}

type LoggersConfig struct {
	Path  string
	Types []string
}

type CallbackConfig struct {
	Path       string
	HMACSecret string
	Types      []string
}

func LoadConfig(confPath string) (Config, error) {
	c := Config{}
	err := configor.Load(&c, confPath)
	return c, err
}

// DefaultConfig returns a Config with every default applied. CONFIGOR_*
// environment overrides are applied too, so a malformed one is an error.
func DefaultConfig() (Config, error) {
	c := Config{}
	err := configor.Load(&c)
	return c, err
}

// Network resolves the configured network name.
func (c Config) Network() (Network, error) {
	return NetworkByName(c.Blink.Network)
}
