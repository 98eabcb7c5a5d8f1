package session

import (
	"context"
	"errors"
	"math/big"

	"github.com/AlexZinkM/payroll-employer/internal/client"
	"github.com/AlexZinkM/payroll-employer/internal/config"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// methodNotFound is the JSON-RPC code for an unsupported method.
const methodNotFound = -32601

// NodeProvider talks to a JSON-RPC wallet or dev node that manages accounts itself.
type NodeProvider struct {
	raw client.RawCaller
}

func NewNodeProvider(raw client.RawCaller) *NodeProvider {
	return &NodeProvider{raw: raw}
}

func (p *NodeProvider) Name() string { return config.ProviderNode }

// RequestAccounts calls eth_requestAccounts, falling back to eth_accounts on
// nodes that do not implement it.
func (p *NodeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	err := p.raw.CallContext(ctx, &accounts, "eth_requestAccounts")
	if err == nil {
		return accounts, nil
	}
	if !isMethodNotFound(err) {
		return nil, err
	}
	return p.Accounts(ctx)
}

func (p *NodeProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.raw.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *NodeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := p.raw.CallContext(ctx, &id, "eth_chainId"); err != nil {
		return nil, err
	}
	return (*big.Int)(&id), nil
}

type switchChainParams struct {
	ChainID *hexutil.Big `json:"chainId"`
}

func (p *NodeProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	return p.raw.CallContext(ctx, nil, "wallet_switchEthereumChain", switchChainParams{ChainID: (*hexutil.Big)(chainID)})
}

func (p *NodeProvider) Signer(account common.Address) (client.Signer, error) {
	return client.NewRPCSigner(p.raw, account), nil
}

// Release revokes the account permission where the wallet supports it.
func (p *NodeProvider) Release(ctx context.Context) error {
	err := p.raw.CallContext(ctx, nil, "wallet_revokePermissions", map[string]struct{}{"eth_accounts": {}})
	if err != nil && isMethodNotFound(err) {
		return nil
	}
	return err
}

func isMethodNotFound(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr) && rpcErr.ErrorCode() == methodNotFound
}
