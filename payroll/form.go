package payroll

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/client"
	"github.com/AlexZinkM/payroll-employer/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// FormState is a step of the payroll creation state machine.
type FormState string

const (
	FormIdle       FormState = "idle"
	FormValidating FormState = "validating"
	FormSubmitting FormState = "submitting"
	FormConfirming FormState = "confirming"
	FormSuccess    FormState = "success"
	FormFailed     FormState = "failed"
)

const (
	DefaultEmployee = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	DefaultAmount   = "1500"
	ScheduleMonthly = "monthly"
)

// ErrSubmitInProgress is returned while another submission is running.
var ErrSubmitInProgress = model.NewError(model.KindBusy, "A payroll is already being created.", nil)

// Session is the read side of the wallet session the payroll components need.
type Session interface {
	Account() (common.Address, bool)
	Signer() client.Signer
}

// Result describes a confirmed vault creation.
type Result struct {
	TxHash        common.Hash
	BlockNumber   uint64
	Vault         common.Address
	HasVault      bool
	MonthlyAmount *big.Int
	FirstPayment  int64
	Reference     [32]byte
}

// FormStatus is a snapshot of the form.
type FormStatus struct {
	State     FormState
	Message   string
	Employer  common.Address
	Connected bool
	Employee  string
	Amount    string
	CanSubmit bool
	Result    *Result
	ErrorKind model.ErrorKind
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithConfirmationTimeout bounds how long a submission waits for its receipt.
// Zero waits until the submit context ends.
func WithConfirmationTimeout(d time.Duration) FormOption {
	return func(f *Form) { f.confirmTimeout = d }
}

// WithClock replaces time.Now for schedule computation.
func WithClock(now func() time.Time) FormOption {
	return func(f *Form) { f.now = now }
}

// WithDefaults sets the initial field values.
func WithDefaults(employee, amount string) FormOption {
	return func(f *Form) {
		f.employee = employee
		f.amount = amount
	}
}

// Form collects employee and amount and submits createVault.
type Form struct {
	factory        *Factory
	chain          ChainClient
	token          common.Address
	session        Session
	logger         *zap.Logger
	confirmTimeout time.Duration
	now            func() time.Time

	mu         sync.Mutex
	state      FormState
	message    string
	employee   string
	amount     string
	result     *Result
	errKind    model.ErrorKind
	submitting bool

	listenerMu sync.Mutex
	listeners  []func(Result)
}

func NewForm(factory *Factory, token common.Address, session Session, logger *zap.Logger, opts ...FormOption) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Form{
		factory:  factory,
		chain:    factory.chain,
		token:    token,
		session:  session,
		logger:   logger.Named("form"),
		now:      time.Now,
		state:    FormIdle,
		employee: DefaultEmployee,
		amount:   DefaultAmount,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnCreated registers fn to run after every confirmed creation.
func (f *Form) OnCreated(fn func(Result)) {
	f.listenerMu.Lock()
	defer f.listenerMu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// SetEmployee edits the employee field. Editing after a finished submission returns the form to idle.
func (f *Form) SetEmployee(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employee = v
	f.resetLocked()
}

// SetAmount edits the monthly amount field.
func (f *Form) SetAmount(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amount = v
	f.resetLocked()
}

func (f *Form) resetLocked() {
	if f.submitting {
		return
	}
	if f.state == FormSuccess || f.state == FormFailed {
		f.state = FormIdle
		f.message = ""
		f.errKind = ""
	}
}

// SubmitFields replaces both fields and submits them.
func (f *Form) SubmitFields(ctx context.Context, employee, amount string) (*Result, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.employee = employee
	f.amount = amount
	f.resetLocked()
	f.mu.Unlock()

	return f.Submit(ctx)
}

// Status returns the current form snapshot.
func (f *Form) Status() FormStatus {
	account, connected := f.session.Account()
	signer := f.session.Signer()

	f.mu.Lock()
	defer f.mu.Unlock()

	st := FormStatus{
		State:     f.state,
		Message:   f.message,
		Employee:  f.employee,
		Amount:    f.amount,
		Connected: connected,
		CanSubmit: connected && signer != nil && !f.submitting,
		ErrorKind: f.errKind,
	}
	if connected {
		st.Employer = account
	}
	if f.result != nil {
		r := *f.result
		st.Result = &r
	}
	return st
}

// Submit validates the fields and creates the vault, waiting for confirmation.
func (f *Form) Submit(ctx context.Context) (*Result, error) {
	employer, connected := f.session.Account()
	signer := f.session.Signer()

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if !connected || signer == nil {
		f.mu.Unlock()
		return nil, model.NewError(model.KindConnection, "Connect your wallet first.", nil)
	}
	f.submitting = true
	f.state = FormValidating
	f.message = ""
	f.errKind = ""
	employee, amount := f.employee, f.amount
	f.mu.Unlock()

	req, err := NewCreationRequest(employer, f.token, employee, amount, f.now())
	if err != nil {
		f.fail(err)
		return nil, err
	}

	f.mu.Lock()
	f.state = FormSubmitting
	f.message = "Sending transaction..."
	f.mu.Unlock()

	result, err := f.submit(ctx, req, signer)
	if err != nil {
		f.fail(err)
		return nil, err
	}

	f.mu.Lock()
	f.submitting = false
	f.state = FormSuccess
	f.message = fmt.Sprintf("Payroll created. Block %d.", result.BlockNumber)
	f.employee = ""
	f.amount = ""
	f.result = result
	f.mu.Unlock()

	f.logger.Info("payroll created",
		zap.Stringer("employer", employer),
		zap.Stringer("employee", req.Employee),
		zap.Stringer("amount", req.MonthlyAmount),
		zap.Stringer("tx", result.TxHash),
		zap.Uint64("block", result.BlockNumber),
	)

	f.listenerMu.Lock()
	listeners := append(([]func(Result))(nil), f.listeners...)
	f.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(*result)
	}

	r := *result
	return &r, nil
}

func (f *Form) submit(ctx context.Context, req *CreationRequest, signer client.Signer) (*Result, error) {
	handle, err := f.factory.CreateVault(ctx, req, signer)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.state = FormConfirming
	f.message = fmt.Sprintf("Tx sent: %s…", handle.Hash.Hex()[:12])
	f.mu.Unlock()

	waitCtx := ctx
	if f.confirmTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, f.confirmTimeout)
		defer cancel()
	}

	receipt, err := f.chain.AwaitConfirmation(waitCtx, handle)
	if err != nil {
		return nil, err
	}

	vault, hasVault := vaultFromHandle(handle)
	return &Result{
		TxHash:        receipt.TxHash,
		BlockNumber:   receipt.BlockNumber,
		Vault:         vault,
		HasVault:      hasVault,
		MonthlyAmount: req.MonthlyAmount,
		FirstPayment:  req.Schedule[0].Int64(),
		Reference:     req.Reference,
	}, nil
}

func (f *Form) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitting = false
	f.state = FormFailed
	f.message = model.UserMessage(err)
	f.errKind = model.KindOf(err)
	f.logger.Warn("payroll submission failed", zap.String("kind", string(f.errKind)), zap.Error(err))
}
