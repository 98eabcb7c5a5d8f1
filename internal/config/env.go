package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/common"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Wallet provider strategies selectable with WALLET_PROVIDER.
const (
	ProviderKeystore = "keystore"
	ProviderNode     = "node"
)

// Config contains all configuration parameters for the application.
// It is loaded once at startup and passed to the components that need it.
type Config struct {
	Port                string        `envconfig:"PORT" default:"8080"`
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	RPCURL              string        `envconfig:"RPC_URL" default:"http://127.0.0.1:8545"`
	ChainID             int64         `envconfig:"CHAIN_ID" default:"31337"`
	FactoryAddress      string        `envconfig:"FACTORY_ADDRESS" default:"0x4ed7c70F96B99c776995fB64377f0d4aB3B0e1C1"`
	TokenAddress        string        `envconfig:"TOKEN_ADDRESS" default:"0xc6e7DF5E7b4f2A278906862b61205850344D4e7d"`
	WalletProvider      string        `envconfig:"WALLET_PROVIDER" default:"keystore"`
	KeystorePath        string        `envconfig:"KEYSTORE_PATH" default:"employer.cwt"`
	PollInterval        time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	ConfirmationTimeout time.Duration `envconfig:"CONFIRMATION_TIMEOUT" default:"2m"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values envconfig cannot check on its own.
func (c *Config) Validate() error {
	if c.ChainID <= 0 {
		return errors.New("CHAIN_ID must be positive")
	}
	if _, err := common.ParseAddress(c.FactoryAddress); err != nil {
		return fmt.Errorf("invalid FACTORY_ADDRESS: %w", err)
	}
	if _, err := common.ParseAddress(c.TokenAddress); err != nil {
		return fmt.Errorf("invalid TOKEN_ADDRESS: %w", err)
	}
	switch c.WalletProvider {
	case ProviderKeystore:
		if c.KeystorePath == "" {
			return errors.New("KEYSTORE_PATH must be set for the keystore provider")
		}
	case ProviderNode:
	default:
		return fmt.Errorf("WALLET_PROVIDER must be %q or %q", ProviderKeystore, ProviderNode)
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	if c.ConfirmationTimeout < 0 {
		return errors.New("CONFIRMATION_TIMEOUT must not be negative")
	}
	return nil
}

// Chain returns the target chain id.
func (c *Config) Chain() *big.Int {
	return big.NewInt(c.ChainID)
}

// Factory returns the payroll factory contract address.
func (c *Config) Factory() ethcommon.Address {
	return ethcommon.HexToAddress(c.FactoryAddress)
}

// Token returns the payroll token contract address.
func (c *Config) Token() ethcommon.Address {
	return ethcommon.HexToAddress(c.TokenAddress)
}

// PromptForPassword prompts the user for the key file password in the terminal.
// The password is read without echoing (hidden input).
// Caller must zero the returned slice after use.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}
