package payroll

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/AlexZinkM/payroll-employer/internal/client"

	"github.com/ethereum/go-ethereum/common"
)

var (
	factoryAddr  = common.HexToAddress("0x4ed7c70F96B99c776995fB64377f0d4aB3B0e1C1")
	tokenAddr    = common.HexToAddress("0xc6e7DF5E7b4f2A278906862b61205850344D4e7d")
	employerAddr = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	employeeAddr = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

type stubSigner struct{ addr common.Address }

func (s stubSigner) Address() common.Address { return s.addr }

func (s stubSigner) SendTransaction(context.Context, client.TxRequest) (common.Hash, error) {
	return common.Hash{}, nil
}

// keySigner stands in for a key-holding signer: it stops signing once released.
type keySigner struct {
	addr common.Address

	mu       sync.Mutex
	released bool
}

func (s *keySigner) Address() common.Address { return s.addr }

func (s *keySigner) SendTransaction(context.Context, client.TxRequest) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return common.Hash{}, client.ErrSignerReleased
	}
	return common.HexToHash("0x01"), nil
}

func (s *keySigner) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
}

// fakeSession is a fixed wallet session. When signer is set it is handed
// out instead of a stub and released on disconnect.
type fakeSession struct {
	mu        sync.Mutex
	account   common.Address
	connected bool
	signer    *keySigner
}

func (s *fakeSession) disconnect() {
	s.mu.Lock()
	signer := s.signer
	s.connected = false
	s.signer = nil
	s.mu.Unlock()
	if signer != nil {
		signer.Release()
	}
}

func connectedSession() *fakeSession {
	return &fakeSession{account: employerAddr, connected: true}
}

func (s *fakeSession) Account() (common.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, s.connected
}

func (s *fakeSession) Signer() client.Signer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	if s.signer != nil {
		return s.signer
	}
	return stubSigner{addr: s.account}
}

// fakeChain is an in-memory factory and token. Vaults appear once their
// creation is confirmed.
type fakeChain struct {
	mu sync.Mutex

	vaults   map[common.Address][]common.Address
	pending  map[common.Hash]pendingVault
	balance  *big.Int
	queries  []client.Call
	submits  []client.Call
	nextID   int
	nextHash int

	QueryFunc  func(call client.Call) ([]interface{}, error)
	SubmitFunc func(call client.Call, signer client.Signer) (*client.TxHandle, error)
	AwaitFunc  func(ctx context.Context, handle *client.TxHandle) (*client.Receipt, error)
}

type pendingVault struct {
	employer common.Address
	vault    common.Address
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		vaults:  make(map[common.Address][]common.Address),
		pending: make(map[common.Hash]pendingVault),
		balance: big.NewInt(2_500_500_000),
	}
}

func (c *fakeChain) QueryRead(_ context.Context, call client.Call) ([]interface{}, error) {
	c.mu.Lock()
	c.queries = append(c.queries, call)
	c.mu.Unlock()

	if c.QueryFunc != nil {
		return c.QueryFunc(call)
	}
	if _, err := call.ABI.Pack(call.Method, call.Args...); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch call.Method {
	case "employerVaults":
		owned := c.vaults[call.Args[0].(common.Address)]
		return []interface{}{append([]common.Address{}, owned...)}, nil
	case "balanceOf":
		return []interface{}{new(big.Int).Set(c.balance)}, nil
	case "symbol":
		return []interface{}{"USDT"}, nil
	case "decimals":
		return []interface{}{uint8(6)}, nil
	}
	return nil, fmt.Errorf("unexpected method %s", call.Method)
}

func (c *fakeChain) SubmitTransaction(_ context.Context, call client.Call, signer client.Signer) (*client.TxHandle, error) {
	c.mu.Lock()
	c.submits = append(c.submits, call)
	c.mu.Unlock()

	if c.SubmitFunc != nil {
		return c.SubmitFunc(call, signer)
	}
	if _, err := call.ABI.Pack(call.Method, call.Args...); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.nextHash++
	vault := common.BigToAddress(big.NewInt(int64(0xa000 + c.nextID)))
	hash := common.BigToHash(big.NewInt(int64(0xbeef0000 + c.nextHash)))
	c.pending[hash] = pendingVault{employer: signer.Address(), vault: vault}
	return &client.TxHandle{
		Hash:     hash,
		From:     signer.Address(),
		Contract: call.Contract,
		Method:   call.Method,
		Outputs:  []interface{}{vault},
	}, nil
}

func (c *fakeChain) AwaitConfirmation(ctx context.Context, handle *client.TxHandle) (*client.Receipt, error) {
	if c.AwaitFunc != nil {
		return c.AwaitFunc(ctx, handle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[handle.Hash]; ok {
		c.vaults[p.employer] = append(c.vaults[p.employer], p.vault)
		delete(c.pending, handle.Hash)
	}
	return &client.Receipt{TxHash: handle.Hash, BlockNumber: 100, Status: 1}, nil
}

func (c *fakeChain) NativeBalance(context.Context, common.Address) (*big.Int, error) {
	// 0.25 ETH
	return big.NewInt(250_000_000_000_000_000), nil
}

func (c *fakeChain) submitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submits)
}

func (c *fakeChain) lastSubmit() client.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submits[len(c.submits)-1]
}
