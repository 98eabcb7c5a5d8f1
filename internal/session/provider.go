package session

import (
	"context"
	"math/big"

	"github.com/AlexZinkM/payroll-employer/internal/client"

	"github.com/ethereum/go-ethereum/common"
)

// Provider is the wallet transport behind a Store.
type Provider interface {
	// Name identifies the strategy, e.g. "keystore" or "node".
	Name() string
	// RequestAccounts asks the wallet to expose its accounts, unlocking them if needed.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts returns the currently exposed accounts without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SwitchChain(ctx context.Context, chainID *big.Int) error
	// Signer returns a signing handle for account.
	Signer(account common.Address) (client.Signer, error)
	// Release drops whatever the provider holds for the session.
	Release(ctx context.Context) error
}
