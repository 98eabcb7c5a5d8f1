package session

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/client"
	"github.com/AlexZinkM/payroll-employer/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the connection state of the session.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	ID       string
	Status   Status
	Account  common.Address
	ChainID  *big.Int
	Provider string
}

// HasAccount reports whether the snapshot carries a connected account.
func (s Snapshot) HasAccount() bool {
	return s.Status == StatusConnected
}

// EventKind names a session change.
type EventKind string

const (
	EventAccountChanged EventKind = "account_changed"
	EventChainChanged   EventKind = "chain_changed"
	EventDisconnected   EventKind = "disconnected"
)

// Event is delivered to subscribers after the store state has changed.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Store holds the single wallet session of the process.
type Store struct {
	provider Provider
	target   *big.Int
	logger   *zap.Logger

	mu      sync.RWMutex
	id      string
	status  Status
	account common.Address
	chainID *big.Int
	signer  client.Signer
	// epoch changes on every connect attempt and every clear; a connect
	// commits only if it still owns the epoch it started with.
	epoch   uint64

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewStore creates a disconnected store. provider may be nil, in which case
// every Connect fails with a connection error.
func NewStore(provider Provider, target *big.Int, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		provider: provider,
		target:   new(big.Int).Set(target),
		logger:   logger.Named("session"),
		status:   StatusDisconnected,
		subs:     make(map[int]func(Event)),
	}
}

// Subscribe registers fn for session events and returns a func that removes it.
// fn runs synchronously on the goroutine that changed the state.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) publish(kind EventKind) {
	ev := Event{Kind: kind, Snapshot: s.Snapshot()}

	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		ID:      s.id,
		Status:  s.status,
		Account: s.account,
	}
	if s.chainID != nil {
		snap.ChainID = new(big.Int).Set(s.chainID)
	}
	if s.provider != nil {
		snap.Provider = s.provider.Name()
	}
	return snap
}

// Account returns the connected account, if any.
func (s *Store) Account() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, s.status == StatusConnected
}

// Signer returns the signing handle of the connected account, or nil.
func (s *Store) Signer() client.Signer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signer
}

// Connect asks the provider for an account, moves it to the target chain and
// stores the signing handle. Connecting an already connected store is a no-op.
func (s *Store) Connect(ctx context.Context) (Snapshot, error) {
	if s.provider == nil {
		return s.Snapshot(), model.NewError(model.KindConnection, "no wallet provider configured", nil)
	}

	s.mu.Lock()
	switch s.status {
	case StatusConnected:
		s.mu.Unlock()
		return s.Snapshot(), nil
	case StatusConnecting:
		s.mu.Unlock()
		return s.Snapshot(), model.NewError(model.KindBusy, "connection already in progress", nil)
	}
	s.status = StatusConnecting
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	account, chainID, signer, err := s.establish(ctx)
	if err != nil {
		s.mu.Lock()
		if s.epoch == epoch {
			s.status = StatusDisconnected
		}
		s.mu.Unlock()
		s.logger.Warn("connect failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return s.Snapshot(), err
	}

	s.mu.Lock()
	if s.status != StatusConnecting || s.epoch != epoch {
		s.mu.Unlock()
		releaseSigner(signer)
		s.logger.Info("connect abandoned, session was disconnected meanwhile", zap.String("provider", s.provider.Name()))
		return s.Snapshot(), model.NewError(model.KindConnection, "disconnected while connecting", nil)
	}
	s.id = uuid.NewString()
	s.status = StatusConnected
	s.account = account
	s.chainID = chainID
	s.signer = signer
	s.mu.Unlock()

	s.logger.Info("wallet connected",
		zap.String("provider", s.provider.Name()),
		zap.Stringer("account", account),
		zap.Stringer("chain", chainID),
	)
	s.publish(EventAccountChanged)
	return s.Snapshot(), nil
}

func (s *Store) establish(ctx context.Context) (common.Address, *big.Int, client.Signer, error) {
	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, nil, nil, model.NewError(model.KindConnection, "wallet refused to connect: "+err.Error(), err)
	}
	if len(accounts) == 0 {
		return common.Address{}, nil, nil, model.NewError(model.KindConnection, "wallet returned no accounts", nil)
	}
	account := accounts[0]

	chainID, err := s.ensureChain(ctx)
	if err != nil {
		return common.Address{}, nil, nil, err
	}

	signer, err := s.provider.Signer(account)
	if err != nil {
		return common.Address{}, nil, nil, model.NewError(model.KindConnection, "failed to get signer: "+err.Error(), err)
	}
	return account, chainID, signer, nil
}

func (s *Store) ensureChain(ctx context.Context) (*big.Int, error) {
	current, err := s.provider.ChainID(ctx)
	if err != nil {
		return nil, model.NewError(model.KindConnection, "failed to read wallet chain: "+err.Error(), err)
	}
	if current.Cmp(s.target) == 0 {
		return current, nil
	}

	s.logger.Info("switching chain", zap.Stringer("from", current), zap.Stringer("to", s.target))
	if err := s.provider.SwitchChain(ctx, s.target); err != nil {
		return nil, model.NewError(model.KindChainSwitch, "failed to switch to chain "+s.target.String()+": "+err.Error(), err)
	}

	current, err = s.provider.ChainID(ctx)
	if err != nil {
		return nil, model.NewError(model.KindChainSwitch, "failed to read wallet chain after switch: "+err.Error(), err)
	}
	if current.Cmp(s.target) != 0 {
		return nil, model.NewError(model.KindChainSwitch, "wallet is still on chain "+current.String(), nil)
	}
	return current, nil
}

// Disconnect clears the session. Provider release failures are only logged.
func (s *Store) Disconnect(ctx context.Context) Snapshot {
	wasConnected := s.clear()

	if s.provider != nil {
		if err := s.provider.Release(ctx); err != nil {
			s.logger.Warn("provider release failed", zap.Error(err))
		}
	}

	if wasConnected {
		s.logger.Info("wallet disconnected")
		s.publish(EventDisconnected)
	}
	return s.Snapshot()
}

// clear resets the session, aborts a pending connect and releases the
// dropped signing handle. It reports whether a session was connected.
func (s *Store) clear() bool {
	s.mu.Lock()
	was := s.status == StatusConnected
	dropped := s.signer
	s.epoch++
	s.id = ""
	s.status = StatusDisconnected
	s.account = common.Address{}
	s.chainID = nil
	s.signer = nil
	s.mu.Unlock()

	releaseSigner(dropped)
	return was
}

// releaser is implemented by signing handles that hold key material.
type releaser interface {
	Release()
}

func releaseSigner(signer client.Signer) {
	if r, ok := signer.(releaser); ok {
		r.Release()
	}
}

// HandleAccountsChanged applies an accounts notification from the provider.
// An empty list disconnects; a different first account replaces the session.
func (s *Store) HandleAccountsChanged(accounts []common.Address) {
	if len(accounts) == 0 {
		if s.clear() {
			s.logger.Info("wallet exposed no accounts, session cleared")
			s.publish(EventDisconnected)
		}
		return
	}

	s.mu.RLock()
	connected := s.status == StatusConnected
	same := s.account == accounts[0]
	s.mu.RUnlock()
	if !connected || same {
		return
	}

	signer, err := s.provider.Signer(accounts[0])
	if err != nil {
		s.logger.Warn("no signer for new account, session cleared", zap.Stringer("account", accounts[0]), zap.Error(err))
		if s.clear() {
			s.publish(EventDisconnected)
		}
		return
	}

	s.mu.Lock()
	if s.status != StatusConnected {
		s.mu.Unlock()
		releaseSigner(signer)
		return
	}
	previous := s.signer
	s.id = uuid.NewString()
	s.account = accounts[0]
	s.signer = signer
	s.mu.Unlock()
	releaseSigner(previous)

	s.logger.Info("wallet account changed", zap.Stringer("account", accounts[0]))
	s.publish(EventAccountChanged)
}

// HandleChainChanged applies a chain notification from the provider.
func (s *Store) HandleChainChanged(chainID *big.Int) {
	if chainID == nil {
		return
	}

	s.mu.Lock()
	if s.status != StatusConnected || (s.chainID != nil && s.chainID.Cmp(chainID) == 0) {
		s.mu.Unlock()
		return
	}
	s.chainID = new(big.Int).Set(chainID)
	s.mu.Unlock()

	if chainID.Cmp(s.target) != 0 {
		s.logger.Warn("wallet moved off the target chain", zap.Stringer("chain", chainID), zap.Stringer("target", s.target))
	}
	s.publish(EventChainChanged)
}

// Watch polls the provider while connected and feeds account and chain
// changes into the store until ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	if s.provider == nil {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if _, ok := s.Account(); !ok {
			continue
		}
		s.poll(ctx)
	}
}

func (s *Store) poll(ctx context.Context) {
	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		s.logger.Debug("accounts poll failed", zap.Error(err))
		return
	}
	s.HandleAccountsChanged(accounts)

	if _, ok := s.Account(); !ok {
		return
	}
	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		s.logger.Debug("chain poll failed", zap.Error(err))
		return
	}
	s.HandleChainChanged(chainID)
}
