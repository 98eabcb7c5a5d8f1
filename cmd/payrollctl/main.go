// @title        Payroll Employer API
// @version      1.0
// @description  Employer side of the payroll vault factory: wallet session, vault creation and vault list.
// @host         localhost:8080
// @BasePath     /
package main

import (
	"fmt"
	"os"

	"github.com/AlexZinkM/payroll-employer/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "payrollctl",
	Short: "Create and list payroll vaults as an employer",
	Long: `payrollctl connects an employer wallet to the payroll vault factory.

It serves the employer API (session, vault creation form, vault list) and
offers the same operations from the command line. Configuration comes from
environment variables (RPC_URL, CHAIN_ID, FACTORY_ADDRESS, TOKEN_ADDRESS,
WALLET_PROVIDER, KEYSTORE_PATH, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(vaultsCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(keystoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
