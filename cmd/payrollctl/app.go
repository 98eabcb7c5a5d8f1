package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexZinkM/payroll-employer/internal/client"
	"github.com/AlexZinkM/payroll-employer/internal/config"
	"github.com/AlexZinkM/payroll-employer/internal/session"
	"github.com/AlexZinkM/payroll-employer/payroll"

	"go.uber.org/zap"
)

// app is the composed employer service.
type app struct {
	evm      *client.EVMClient
	store    *session.Store
	employer *payroll.Employer
	closers  []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	evm, err := client.Dial(ctx, cfg.RPCURL, cfg.Chain(), cfg.PollInterval, logger)
	if err != nil {
		return nil, err
	}
	a := &app{evm: evm, closers: []func(){evm.Close}}

	provider, closeProvider, err := newProvider(cfg, evm)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeProvider)

	a.store = session.NewStore(provider, cfg.Chain(), logger)
	a.employer = payroll.NewEmployer(a.store, evm, cfg.Factory(), cfg.Token(), logger,
		payroll.WithConfirmationTimeout(cfg.ConfirmationTimeout),
	)
	a.closers = append(a.closers, a.employer.Close)

	logger.Info("employer service ready",
		zap.String("rpc", cfg.RPCURL),
		zap.Int64("chain", cfg.ChainID),
		zap.String("provider", provider.Name()),
		zap.Stringer("factory", cfg.Factory()),
		zap.Stringer("token", cfg.Token()),
	)
	return a, nil
}

func newProvider(cfg *config.Config, evm *client.EVMClient) (session.Provider, func(), error) {
	switch cfg.WalletProvider {
	case config.ProviderNode:
		if evm.Raw() == nil {
			return nil, nil, errors.New("node provider needs a raw JSON-RPC connection")
		}
		return session.NewNodeProvider(evm.Raw()), func() {}, nil
	case config.ProviderKeystore:
		password, err := config.PromptForPassword("Enter key file password: ")
		if err != nil {
			return nil, nil, err
		}
		defer clear(password)

		p := session.NewKeystoreProvider(cfg.KeystorePath, password, evm)
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown wallet provider %q", cfg.WalletProvider)
	}
}

// Close releases everything in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
