package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultRPCURL        = "https://ethereum-hoodi-rpc.publicnode.com"
	DefaultSubgraphURL   = "https://api.studio.thegraph.com/query/71118/ssv-network-hoodi/version/latest"
	DefaultViewsContract = "0x5AdDb3f1529C5ec70D77400499eE4bbF328368fe"
)

// Config holds all application configuration
type Config struct {
	// Chain settings
	RPCURL        string
	ViewsContract string

	// Indexer settings
	SubgraphURL string

	// RequestTimeout bounds a whole dashboard fetch
	RequestTimeout time.Duration

	// Owner used when none is given and no previous query is stored
	DefaultOwner string

	// LogDir receives log files while the TUI owns the terminal
	LogDir string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		RPCURL:         DefaultRPCURL,
		ViewsContract:  DefaultViewsContract,
		SubgraphURL:    DefaultSubgraphURL,
		RequestTimeout: 30 * time.Second,
		LogDir:         "logs",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if rpcURL := os.Getenv("SSV_RPC_URL"); rpcURL != "" {
		c.RPCURL = rpcURL
	}

	if contract := os.Getenv("SSV_VIEWS_CONTRACT"); contract != "" {
		c.ViewsContract = contract
	}

	if subgraphURL := os.Getenv("SSV_SUBGRAPH_URL"); subgraphURL != "" {
		c.SubgraphURL = subgraphURL
	}

	if timeout := os.Getenv("SSV_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.RequestTimeout = time.Duration(t) * time.Second
		}
	}

	if owner := os.Getenv("SSV_DEFAULT_OWNER"); owner != "" {
		c.DefaultOwner = owner
	}

	if logDir := os.Getenv("SSV_LOG_DIR"); logDir != "" {
		c.LogDir = logDir
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validateURL("RPC URL", c.RPCURL); err != nil {
		return err
	}

	if err := validateURL("subgraph URL", c.SubgraphURL); err != nil {
		return err
	}

	if !common.IsHexAddress(c.ViewsContract) {
		return fmt.Errorf("views contract must be a hex address, got: %q", c.ViewsContract)
	}

	if c.DefaultOwner != "" && !common.IsHexAddress(c.DefaultOwner) {
		return fmt.Errorf("default owner must be a hex address, got: %q", c.DefaultOwner)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %s", c.RequestTimeout)
	}

	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q: scheme and host are required", name, raw)
	}

	return nil
}
