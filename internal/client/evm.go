package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/model"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Backend is the subset of ethclient.Client the facade needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// RawCaller issues raw JSON-RPC requests; *rpc.Client implements it.
type RawCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Call describes one contract function invocation.
type Call struct {
	Contract common.Address
	ABI      *abi.ABI
	Method   string
	Args     []interface{}
}

func (c Call) pack() ([]byte, error) {
	if c.ABI == nil {
		return nil, errors.New("call has no ABI")
	}
	data, err := c.ABI.Pack(c.Method, c.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s arguments: %w", c.Method, err)
	}
	return data, nil
}

func (c Call) unpack(output []byte) ([]interface{}, error) {
	values, err := c.ABI.Unpack(c.Method, output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s output: %w", c.Method, err)
	}
	return values, nil
}

// TxHandle identifies a broadcast transaction.
type TxHandle struct {
	Hash     common.Hash
	From     common.Address
	Contract common.Address
	Method   string
	// Outputs are the return values observed while simulating.
	Outputs []interface{}
}

// Receipt is the confirmation data of a mined transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	Status      uint64
	GasUsed     uint64
}

// Succeeded reports whether the transaction executed without reverting.
func (r *Receipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}

// EVMClient is the facade over one JSON-RPC endpoint bound to a target chain.
type EVMClient struct {
	backend      Backend
	raw          RawCaller
	chainID      *big.Int
	pollInterval time.Duration
	logger       *zap.Logger
	closeFn      func()
}

// Dial connects to rpcURL and returns a facade bound to chainID.
func Dial(ctx context.Context, rpcURL string, chainID *big.Int, pollInterval time.Duration, logger *zap.Logger) (*EVMClient, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, model.NewError(model.KindConnection, "failed to connect to RPC endpoint", err)
	}

	c := NewEVMClient(ethclient.NewClient(rpcClient), rpcClient, chainID, pollInterval, logger)
	c.closeFn = rpcClient.Close
	return c, nil
}

// NewEVMClient wraps an existing backend. raw may be nil when no provider needs raw calls.
func NewEVMClient(backend Backend, raw RawCaller, chainID *big.Int, pollInterval time.Duration, logger *zap.Logger) *EVMClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &EVMClient{
		backend:      backend,
		raw:          raw,
		chainID:      new(big.Int).Set(chainID),
		pollInterval: pollInterval,
		logger:       logger.Named("evm"),
	}
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

// Raw returns the raw JSON-RPC caller, or nil.
func (c *EVMClient) Raw() RawCaller {
	return c.raw
}

// TargetChainID returns the chain the facade is configured for.
func (c *EVMClient) TargetChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// ChainID returns the chain id served by the endpoint.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, model.NewError(model.KindQuery, "failed to get chain id", err)
	}
	return id, nil
}

// NativeBalance returns the gas currency balance of account in wei.
func (c *EVMClient) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	wei, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, model.NewError(model.KindQuery, "failed to get native balance", err)
	}
	return wei, nil
}

// QueryRead calls a view function and returns its decoded outputs.
func (c *EVMClient) QueryRead(ctx context.Context, call Call) ([]interface{}, error) {
	data, err := call.pack()
	if err != nil {
		return nil, model.NewError(model.KindQuery, err.Error(), err)
	}

	to := call.Contract
	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		c.logger.Debug("read call failed", zap.String("method", call.Method), zap.Stringer("contract", call.Contract), zap.Error(err))
		return nil, model.NewError(model.KindQuery, "failed to call "+call.Method, err)
	}
	if len(output) == 0 {
		return nil, model.NewError(model.KindQuery, fmt.Sprintf("%s returned no data; is %s a contract on this chain?", call.Method, call.Contract.Hex()), nil)
	}

	values, err := call.unpack(output)
	if err != nil {
		return nil, model.NewError(model.KindQuery, err.Error(), err)
	}
	return values, nil
}

// Simulate executes the call from the given sender without broadcasting it.
// A revert is reported as a simulation error carrying the decoded reason.
func (c *EVMClient) Simulate(ctx context.Context, call Call, from common.Address) ([]interface{}, error) {
	data, err := call.pack()
	if err != nil {
		return nil, model.NewError(model.KindValidation, err.Error(), err)
	}

	to := call.Contract
	output, err := c.backend.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		if !isNodeError(err) {
			return nil, model.NewError(model.KindSubmission, "failed to simulate "+call.Method+": "+err.Error(), err)
		}
		reason := RevertReason(err)
		if reason == "" {
			reason = err.Error()
		}
		c.logger.Info("simulation reverted", zap.String("method", call.Method), zap.Stringer("from", from), zap.String("reason", reason))
		return nil, model.NewError(model.KindSimulation, reason, err)
	}

	if len(call.ABI.Methods[call.Method].Outputs) == 0 {
		return nil, nil
	}
	values, err := call.unpack(output)
	if err != nil {
		return nil, model.NewError(model.KindSimulation, err.Error(), err)
	}
	return values, nil
}

// SubmitTransaction simulates the call, then asks the signer to sign and broadcast it.
func (c *EVMClient) SubmitTransaction(ctx context.Context, call Call, signer Signer) (*TxHandle, error) {
	if signer == nil {
		return nil, model.NewError(model.KindConnection, "no signing handle: connect a wallet first", nil)
	}
	from := signer.Address()

	outputs, err := c.Simulate(ctx, call, from)
	if err != nil {
		return nil, err
	}

	data, err := call.pack()
	if err != nil {
		return nil, model.NewError(model.KindValidation, err.Error(), err)
	}

	hash, err := signer.SendTransaction(ctx, TxRequest{To: call.Contract, Data: data})
	if err != nil {
		return nil, model.NewError(model.KindSubmission, "failed to send transaction: "+err.Error(), err)
	}

	c.logger.Info("transaction sent",
		zap.String("method", call.Method),
		zap.Stringer("from", from),
		zap.Stringer("to", call.Contract),
		zap.Stringer("tx", hash),
	)

	return &TxHandle{
		Hash:     hash,
		From:     from,
		Contract: call.Contract,
		Method:   call.Method,
		Outputs:  outputs,
	}, nil
}

// AwaitConfirmation polls for the receipt of handle until it is mined or ctx ends.
func (c *EVMClient) AwaitConfirmation(ctx context.Context, handle *TxHandle) (*Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(ctx, handle.Hash)
		switch {
		case err == nil:
			r := &Receipt{
				TxHash:      receipt.TxHash,
				Status:      receipt.Status,
				GasUsed:     receipt.GasUsed,
				BlockNumber: receipt.BlockNumber.Uint64(),
			}
			if !r.Succeeded() {
				return r, model.NewError(model.KindSubmission, fmt.Sprintf("transaction reverted in block %d", r.BlockNumber), nil)
			}
			c.logger.Info("transaction confirmed", zap.Stringer("tx", handle.Hash), zap.Uint64("block", r.BlockNumber))
			return r, nil
		case errors.Is(err, ethereum.NotFound):
		case ctx.Err() != nil:
		default:
			c.logger.Warn("receipt lookup failed", zap.Stringer("tx", handle.Hash), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, model.NewError(model.KindConfirmationTimeout,
				fmt.Sprintf("transaction %s not confirmed", handle.Hash.Hex()), ctx.Err())
		case <-ticker.C:
		}
	}
}

// RevertReason decodes an Error(string) revert payload carried by a JSON-RPC error.
func RevertReason(err error) string {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return ""
	}
	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return ""
	}
	raw, err := hexutil.Decode(hexData)
	if err != nil {
		return ""
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return ""
	}
	return reason
}

// isNodeError reports whether err was returned by the node rather than the transport.
func isNodeError(err error) bool {
	var rpcErr rpc.Error
	var dataErr rpc.DataError
	return errors.As(err, &rpcErr) || errors.As(err, &dataErr)
}
