package session

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/AlexZinkM/payroll-employer/internal/client"
	"github.com/AlexZinkM/payroll-employer/internal/config"
	"github.com/AlexZinkM/payroll-employer/internal/crypto"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrChainFixed is returned when the keystore endpoint serves a different chain.
var ErrChainFixed = errors.New("keystore provider is bound to a fixed RPC endpoint and cannot switch chains")

// KeystoreProvider unlocks a local .cwt key file and signs with it.
type KeystoreProvider struct {
	path     string
	password []byte
	evm      *client.EVMClient

	mu  sync.Mutex
	key *ecdsa.PrivateKey
}

// NewKeystoreProvider keeps a copy of password; Close zeroes it.
func NewKeystoreProvider(path string, password []byte, evm *client.EVMClient) *KeystoreProvider {
	pw := make([]byte, len(password))
	copy(pw, password)
	return &KeystoreProvider{path: path, password: pw, evm: evm}
}

func (p *KeystoreProvider) Name() string { return config.ProviderKeystore }

// RequestAccounts decrypts the key file and returns its address.
func (p *KeystoreProvider) RequestAccounts(_ context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != nil {
		return []common.Address{ethcrypto.PubkeyToAddress(p.key.PublicKey)}, nil
	}
	if len(p.password) == 0 {
		return nil, errors.New("keystore password not set")
	}

	cwtFile, walletData, err := crypto.DecryptWallet(p.path, p.password)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock key file: %w", err)
	}
	defer clear(walletData.PrivateKey)

	key, err := ethcrypto.ToECDSA(walletData.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key in key file: %w", err)
	}

	address := ethcrypto.PubkeyToAddress(key.PublicKey)
	if cwtFile.Address != "" && common.HexToAddress(cwtFile.Address) != address {
		return nil, fmt.Errorf("key file address %s does not match its key", cwtFile.Address)
	}

	p.key = key
	return []common.Address{address}, nil
}

// Accounts returns the unlocked address, or nothing while locked.
func (p *KeystoreProvider) Accounts(_ context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key == nil {
		return nil, nil
	}
	return []common.Address{ethcrypto.PubkeyToAddress(p.key.PublicKey)}, nil
}

func (p *KeystoreProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.evm.ChainID(ctx)
}

// SwitchChain succeeds only when the endpoint already serves chainID.
func (p *KeystoreProvider) SwitchChain(ctx context.Context, chainID *big.Int) error {
	current, err := p.evm.ChainID(ctx)
	if err != nil {
		return err
	}
	if current.Cmp(chainID) != 0 {
		return fmt.Errorf("%w (endpoint chain %s)", ErrChainFixed, current)
	}
	return nil
}

// Signer returns a signer over a private copy of the unlocked key.
func (p *KeystoreProvider) Signer(account common.Address) (client.Signer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key == nil {
		return nil, errors.New("key file is locked")
	}
	if ethcrypto.PubkeyToAddress(p.key.PublicKey) != account {
		return nil, fmt.Errorf("account %s is not held by the key file", account.Hex())
	}
	raw := ethcrypto.FromECDSA(p.key)
	defer clear(raw)
	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to copy key: %w", err)
	}
	return client.NewKeySigner(p.evm, key), nil
}

// Release forgets the unlocked key. Signers handed out earlier own their
// own copy and are released by the session. The password is kept for the
// next connect.
func (p *KeystoreProvider) Release(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != nil {
		p.key.D.SetInt64(0)
		p.key = nil
	}
	return nil
}

// Close releases the key and zeroes the password.
func (p *KeystoreProvider) Close() {
	_ = p.Release(context.Background())
	clear(p.password)
	p.password = nil
}
