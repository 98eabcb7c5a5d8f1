package payroll

import (
	"context"
	"fmt"
	"math/big"

	"github.com/AlexZinkM/payroll-employer/internal/common"
	"github.com/AlexZinkM/payroll-employer/internal/model"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// GetBalance reads the payroll token balance of owner together with the
// token symbol and decimals, and the native balance that pays for gas.
func GetBalance(ctx context.Context, token *Token, owner ethcommon.Address) (*model.BalanceResponse, error) {
	var (
		raw      *big.Int
		native   *big.Int
		symbol   string
		decimals uint8
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := token.chain.NativeBalance(gctx, owner)
		if err != nil {
			return fmt.Errorf("failed to get native balance: %w", err)
		}
		native = v
		return nil
	})
	g.Go(func() error {
		v, err := token.BalanceOf(gctx, owner)
		if err != nil {
			return fmt.Errorf("failed to get token balance: %w", err)
		}
		raw = v
		return nil
	})
	g.Go(func() error {
		v, err := token.Symbol(gctx)
		if err != nil {
			return fmt.Errorf("failed to get token symbol: %w", err)
		}
		symbol = v
		return nil
	})
	g.Go(func() error {
		v, err := token.Decimals(gctx)
		if err != nil {
			return fmt.Errorf("failed to get token decimals: %w", err)
		}
		decimals = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Convert to display string (no float precision loss)
	return &model.BalanceResponse{
		Employer: owner.Hex(),
		Token:    token.Address().Hex(),
		Symbol:   symbol,
		Decimals: decimals,
		Balance:  common.FormatWithDecimals(raw, int(decimals)),
		Raw:      raw.String(),
		Native:   common.WeiToETH(native),
	}, nil
}
