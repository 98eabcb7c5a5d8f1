package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TxRequest is an unsigned contract call transaction.
type TxRequest struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Signer is a signing handle: it can authorize and broadcast transactions for one account.
type Signer interface {
	Address() common.Address
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)
}

// ErrSignerReleased is returned by a KeySigner after Release.
var ErrSignerReleased = errors.New("signing key released")

// KeySigner signs EIP-1559 transactions with a local secp256k1 key.
type KeySigner struct {
	backend Backend
	chainID *big.Int
	address common.Address

	mu  sync.Mutex
	key *ecdsa.PrivateKey
}

// NewKeySigner creates a signer for key on the facade's target chain.
// The signer owns key and zeroes it on Release.
func NewKeySigner(c *EVMClient, key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{
		backend: c.backend,
		chainID: c.TargetChainID(),
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address returns the account the signer acts for.
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SendTransaction fills nonce, fees and gas, signs and broadcasts req.
func (s *KeySigner) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	if s.released() {
		return common.Hash{}, ErrSignerReleased
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := s.backend.PendingNonceAt(ctx, s.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	tipCap, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas tip: %w", err)
	}

	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get latest header: %w", err)
	}
	baseFee := head.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	// leave room for two full blocks of base fee growth
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(baseFee, big.NewInt(2)))

	to := req.To
	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:      s.address,
		To:        &to,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Value:     value,
		Data:      req.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})

	signed, err := s.sign(tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to broadcast transaction: %w", err)
	}
	return signed.Hash(), nil
}

func (s *KeySigner) sign(tx *types.Transaction) (*types.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == nil {
		return nil, ErrSignerReleased
	}
	return types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
}

func (s *KeySigner) released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key == nil
}

// Release zeroes the private key. The signer is unusable afterwards.
func (s *KeySigner) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil && s.key.D != nil {
		s.key.D.SetInt64(0)
	}
	s.key = nil
}

// RPCSigner delegates signing to a node or wallet that manages the account
// and exposes it through eth_sendTransaction.
type RPCSigner struct {
	raw     RawCaller
	address common.Address
}

// NewRPCSigner creates a signer for an account managed behind raw.
func NewRPCSigner(raw RawCaller, address common.Address) *RPCSigner {
	return &RPCSigner{raw: raw, address: address}
}

// Address returns the account the signer acts for.
func (s *RPCSigner) Address() common.Address {
	return s.address
}

type sendTxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data"`
	Value *hexutil.Big   `json:"value,omitempty"`
}

// SendTransaction asks the wallet to sign and broadcast req.
func (s *RPCSigner) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	args := sendTxArgs{
		From: s.address,
		To:   req.To,
		Data: req.Data,
	}
	if req.Value != nil && req.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(req.Value)
	}

	var hash common.Hash
	if err := s.raw.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}
