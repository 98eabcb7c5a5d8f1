package payroll

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/AlexZinkM/payroll-employer/internal/client"
	"github.com/AlexZinkM/payroll-employer/internal/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const factoryABIJSON = `[
  {"type":"function","name":"createVault","stateMutability":"nonpayable",
   "inputs":[
     {"name":"employee","type":"address"},
     {"name":"token","type":"address"},
     {"name":"periodAmount","type":"uint256"},
     {"name":"schedule","type":"uint256[]"},
     {"name":"payrollRef","type":"bytes32"}],
   "outputs":[{"name":"vault","type":"address"}]},
  {"type":"function","name":"employerVaults","stateMutability":"view",
   "inputs":[{"name":"employer","type":"address"}],
   "outputs":[{"name":"","type":"address[]"}]}
]`

const erc20ABIJSON = `[
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"decimals","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"symbol","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

var (
	FactoryABI = mustParseABI(factoryABIJSON)
	ERC20ABI   = mustParseABI(erc20ABIJSON)
)

func mustParseABI(def string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI definition: %v", err))
	}
	return &parsed
}

// ChainClient is the part of the chain facade the payroll components use.
// *client.EVMClient implements it.
type ChainClient interface {
	QueryRead(ctx context.Context, call client.Call) ([]interface{}, error)
	SubmitTransaction(ctx context.Context, call client.Call, signer client.Signer) (*client.TxHandle, error)
	AwaitConfirmation(ctx context.Context, handle *client.TxHandle) (*client.Receipt, error)
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
}

// Factory binds the payroll factory contract.
type Factory struct {
	chain   ChainClient
	address common.Address
}

func NewFactory(chain ChainClient, address common.Address) *Factory {
	return &Factory{chain: chain, address: address}
}

// Address returns the factory contract address.
func (f *Factory) Address() common.Address {
	return f.address
}

// EmployerVaults returns the vaults created by employer, oldest first.
func (f *Factory) EmployerVaults(ctx context.Context, employer common.Address) ([]common.Address, error) {
	out, err := f.chain.QueryRead(ctx, client.Call{
		Contract: f.address,
		ABI:      FactoryABI,
		Method:   "employerVaults",
		Args:     []interface{}{employer},
	})
	if err != nil {
		return nil, err
	}

	vaults, ok := out[0].([]common.Address)
	if !ok {
		return nil, model.NewError(model.KindQuery, fmt.Sprintf("unexpected employerVaults output %T", out[0]), nil)
	}
	return vaults, nil
}

func (f *Factory) createVaultCall(req *CreationRequest) client.Call {
	return client.Call{
		Contract: f.address,
		ABI:      FactoryABI,
		Method:   "createVault",
		Args: []interface{}{
			req.Employee,
			req.Token,
			req.MonthlyAmount,
			req.Schedule,
			req.Reference,
		},
	}
}

// CreateVault simulates and broadcasts createVault for req.
func (f *Factory) CreateVault(ctx context.Context, req *CreationRequest, signer client.Signer) (*client.TxHandle, error) {
	return f.chain.SubmitTransaction(ctx, f.createVaultCall(req), signer)
}

// vaultFromHandle extracts the vault address returned by the simulated createVault.
func vaultFromHandle(handle *client.TxHandle) (common.Address, bool) {
	if handle == nil || len(handle.Outputs) == 0 {
		return common.Address{}, false
	}
	vault, ok := handle.Outputs[0].(common.Address)
	return vault, ok
}

// Token binds the ERC-20 payroll token.
type Token struct {
	chain   ChainClient
	address common.Address
}

func NewToken(chain ChainClient, address common.Address) *Token {
	return &Token{chain: chain, address: address}
}

func (t *Token) Address() common.Address {
	return t.address
}

func (t *Token) call(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	out, err := t.chain.QueryRead(ctx, client.Call{
		Contract: t.address,
		ABI:      ERC20ABI,
		Method:   method,
		Args:     args,
	})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// BalanceOf returns the raw token balance of owner.
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	v, err := t.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	balance, ok := v.(*big.Int)
	if !ok {
		return nil, model.NewError(model.KindQuery, fmt.Sprintf("unexpected balanceOf output %T", v), nil)
	}
	return balance, nil
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	v, err := t.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := v.(uint8)
	if !ok {
		return 0, model.NewError(model.KindQuery, fmt.Sprintf("unexpected decimals output %T", v), nil)
	}
	return decimals, nil
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	v, err := t.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	symbol, ok := v.(string)
	if !ok {
		return "", model.NewError(model.KindQuery, fmt.Sprintf("unexpected symbol output %T", v), nil)
	}
	return symbol, nil
}
