package payroll

import (
	"context"
	"sync"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/common"
	"github.com/AlexZinkM/payroll-employer/internal/model"
	"github.com/AlexZinkM/payroll-employer/internal/session"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ListState is the load state of the vault list.
type ListState string

const (
	ListNoAccount ListState = "no_account"
	ListLoading   ListState = "loading"
	ListLoaded    ListState = "loaded"
	ListError     ListState = "error"
)

const (
	MsgConnectToList = "Connect your wallet to see payrolls."
	MsgLoading       = "Loading payrolls..."
	MsgNoPayrolls    = "No payrolls found."
)

const defaultRefreshTimeout = 30 * time.Second

// ListView is a snapshot of the vault list.
type ListView struct {
	State    ListState
	Employer ethcommon.Address
	Heading  string
	Message  string
	Vaults   []ethcommon.Address
	Error    string
}

// List shows the vaults owned by the connected employer.
type List struct {
	factory *Factory
	session Session
	logger  *zap.Logger
	timeout time.Duration

	mu       sync.Mutex
	state    ListState
	employer ethcommon.Address
	vaults   []ethcommon.Address
	err      error
	gen      uint64
}

func NewList(factory *Factory, session Session, logger *zap.Logger) *List {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List{
		factory: factory,
		session: session,
		logger:  logger.Named("list"),
		timeout: defaultRefreshTimeout,
		state:   ListNoAccount,
	}
}

// Refresh reloads the vaults of the connected account. A refresh that is
// overtaken by a newer one is discarded.
func (l *List) Refresh(ctx context.Context) error {
	employer, ok := l.session.Account()

	l.mu.Lock()
	l.gen++
	gen := l.gen
	if !ok {
		l.clearLocked()
		l.mu.Unlock()
		return nil
	}
	l.state = ListLoading
	l.employer = employer
	l.err = nil
	l.mu.Unlock()

	vaults, err := l.factory.EmployerVaults(ctx, employer)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return err
	}
	if err != nil {
		l.state = ListError
		l.vaults = nil
		l.err = err
		l.logger.Warn("failed to load vaults", zap.Stringer("employer", employer), zap.Error(err))
		return err
	}
	l.state = ListLoaded
	l.vaults = vaults
	l.logger.Debug("vaults loaded", zap.Stringer("employer", employer), zap.Int("count", len(vaults)))
	return nil
}

// HandleEvent updates the list for a session change.
func (l *List) HandleEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventDisconnected:
		l.mu.Lock()
		l.gen++
		l.clearLocked()
		l.mu.Unlock()
	case session.EventAccountChanged, session.EventChainChanged:
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		_ = l.Refresh(ctx)
	}
}

func (l *List) clearLocked() {
	l.state = ListNoAccount
	l.employer = ethcommon.Address{}
	l.vaults = nil
	l.err = nil
}

// View returns the current list snapshot.
func (l *List) View() ListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := ListView{
		State:  l.state,
		Vaults: append([]ethcommon.Address(nil), l.vaults...),
	}
	if l.state != ListNoAccount {
		v.Employer = l.employer
		v.Heading = "Payrolls for " + common.ShortAddress(l.employer)
	}

	switch l.state {
	case ListNoAccount:
		v.Message = MsgConnectToList
	case ListLoading:
		v.Message = MsgLoading
	case ListError:
		v.Error = model.UserMessage(l.err)
		v.Message = v.Error
	case ListLoaded:
		if len(l.vaults) == 0 {
			v.Message = MsgNoPayrolls
		}
	}
	return v
}
