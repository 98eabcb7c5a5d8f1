package payroll

import (
	"context"

	"github.com/AlexZinkM/payroll-employer/internal/model"
	"github.com/AlexZinkM/payroll-employer/internal/session"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// SessionStore is the wallet session the employer page is composed over.
// *session.Store implements it.
type SessionStore interface {
	Session
	Snapshot() session.Snapshot
	Connect(ctx context.Context) (session.Snapshot, error)
	Disconnect(ctx context.Context) session.Snapshot
	Subscribe(fn func(session.Event)) (unsubscribe func())
}

// Employer wires the session, the creation form and the vault list into one page.
type Employer struct {
	store   SessionStore
	factory *Factory
	token   *Token
	form    *Form
	list    *List
	logger  *zap.Logger

	unsubscribe func()
}

// EmployerView is a snapshot of the whole page.
type EmployerView struct {
	Welcome       string
	Session       session.Snapshot
	CanConnect    bool
	CanDisconnect bool
	// Form is nil while no account is connected.
	Form     *FormStatus
	Payrolls ListView
}

// NewEmployer composes the page and loads the list for the current session.
func NewEmployer(store SessionStore, chain ChainClient, factoryAddr, tokenAddr ethcommon.Address, logger *zap.Logger, opts ...FormOption) *Employer {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := NewFactory(chain, factoryAddr)
	e := &Employer{
		store:   store,
		factory: factory,
		token:   NewToken(chain, tokenAddr),
		form:    NewForm(factory, tokenAddr, store, logger, opts...),
		list:    NewList(factory, store, logger),
		logger:  logger,
	}

	e.form.OnCreated(func(Result) {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRefreshTimeout)
		defer cancel()
		_ = e.list.Refresh(ctx)
	})
	e.unsubscribe = store.Subscribe(e.list.HandleEvent)

	ctx, cancel := context.WithTimeout(context.Background(), defaultRefreshTimeout)
	defer cancel()
	_ = e.list.Refresh(ctx)
	return e
}

func (e *Employer) Form() *Form { return e.form }

func (e *Employer) List() *List { return e.list }

func (e *Employer) Factory() *Factory { return e.factory }

// Connect connects the wallet; the list reloads through the session event.
func (e *Employer) Connect(ctx context.Context) (session.Snapshot, error) {
	return e.store.Connect(ctx)
}

// Disconnect always succeeds locally.
func (e *Employer) Disconnect(ctx context.Context) session.Snapshot {
	return e.store.Disconnect(ctx)
}

// Snapshot returns the session state.
func (e *Employer) Snapshot() session.Snapshot {
	return e.store.Snapshot()
}

// FormStatus returns the creation form state.
func (e *Employer) FormStatus() FormStatus {
	return e.form.Status()
}

// CreatePayroll submits the creation form with the given fields.
func (e *Employer) CreatePayroll(ctx context.Context, employee, amount string) (*Result, error) {
	return e.form.SubmitFields(ctx, employee, amount)
}

// Payrolls returns the vault list, reloading it first when refresh is set.
func (e *Employer) Payrolls(ctx context.Context, refresh bool) (ListView, error) {
	if refresh {
		if err := e.list.Refresh(ctx); err != nil {
			return e.list.View(), err
		}
	}
	return e.list.View(), nil
}

// View returns the page state.
func (e *Employer) View() EmployerView {
	snap := e.store.Snapshot()
	v := EmployerView{
		Session:       snap,
		CanConnect:    snap.Status == session.StatusDisconnected,
		CanDisconnect: snap.HasAccount(),
		Payrolls:      e.list.View(),
	}
	if snap.HasAccount() {
		v.Welcome = "Welcome " + snap.Account.Hex() + "!"
		st := e.form.Status()
		v.Form = &st
	}
	return v
}

// Balance returns the payroll token balance of the connected employer.
func (e *Employer) Balance(ctx context.Context) (*model.BalanceResponse, error) {
	account, ok := e.store.Account()
	if !ok {
		return nil, model.NewError(model.KindConnection, "Connect your wallet first.", nil)
	}
	return GetBalance(ctx, e.token, account)
}

// QRCode renders the connected employer address as a PNG QR code.
func (e *Employer) QRCode() ([]byte, error) {
	account, ok := e.store.Account()
	if !ok {
		return nil, model.NewError(model.KindConnection, "Connect your wallet first.", nil)
	}
	return AddressQRCode(account.Hex())
}

// Close detaches the page from the session.
func (e *Employer) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}
