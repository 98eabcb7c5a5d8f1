package payroll

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/common"
	"github.com/AlexZinkM/payroll-employer/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

const (
	// AmountDecimals is the fixed-point precision of the payroll token.
	AmountDecimals = common.USDTDecimals
	// PaymentInterval is the delay of the first payment after submission.
	PaymentInterval = 2_592_000 * time.Second
)

// CreationRequest holds the createVault arguments of one submission.
type CreationRequest struct {
	Employer      ethcommon.Address
	Employee      ethcommon.Address
	Token         ethcommon.Address
	MonthlyAmount *big.Int
	Schedule      []*big.Int
	Reference     [32]byte
}

// ParseAmount converts a decimal token amount into micro-units.
func ParseAmount(s string) (*big.Int, error) {
	amount, err := common.ParseWithDecimals(s, AmountDecimals)
	if err != nil {
		if errors.Is(err, common.ErrEmptyAmount) {
			return nil, model.NewError(model.KindValidation, "Enter a monthly amount.", err)
		}
		return nil, model.NewError(model.KindValidation, "Amount must be a number like 1500 or 1500.25.", err)
	}
	return amount, nil
}

// ParseEmployee validates the employee address field.
func ParseEmployee(s string) (ethcommon.Address, error) {
	addr, err := common.ParseAddress(s)
	if err != nil {
		if errors.Is(err, common.ErrChecksumAddress) {
			return ethcommon.Address{}, model.NewError(model.KindValidation, "Employee address has an invalid checksum.", err)
		}
		return ethcommon.Address{}, model.NewError(model.KindValidation, "Employee must be a valid 0x address.", err)
	}
	return addr, nil
}

// Schedule returns the single-payment schedule for a submission at now.
func Schedule(now time.Time) []*big.Int {
	first := now.Add(PaymentInterval).Unix()
	return []*big.Int{big.NewInt(first)}
}

// NewReference returns a fresh random payroll reference.
func NewReference() ([32]byte, error) {
	var ref [32]byte
	if _, err := rand.Read(ref[:]); err != nil {
		return ref, fmt.Errorf("failed to generate payroll reference: %w", err)
	}
	return ref, nil
}

// NewCreationRequest validates the form input and builds the createVault arguments.
// Validation failures never reach the network.
func NewCreationRequest(employer, token ethcommon.Address, employee, amount string, now time.Time) (*CreationRequest, error) {
	employeeAddr, err := ParseEmployee(employee)
	if err != nil {
		return nil, err
	}
	monthly, err := ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	ref, err := NewReference()
	if err != nil {
		return nil, err
	}

	return &CreationRequest{
		Employer:      employer,
		Employee:      employeeAddr,
		Token:         token,
		MonthlyAmount: monthly,
		Schedule:      Schedule(now),
		Reference:     ref,
	}, nil
}
