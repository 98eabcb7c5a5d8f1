package main

import (
	"fmt"
	"io"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/client"
	"github.com/AlexZinkM/payroll-employer/internal/common"
	"github.com/AlexZinkM/payroll-employer/payroll"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

var vaultsCmd = &cobra.Command{
	Use:   "vaults [employer]",
	Short: "List payroll vaults of an employer",
	Long: `List the payroll vaults the factory recorded for an employer.

With an address argument the factory is queried directly and no wallet is
needed. Without one the configured wallet is connected and its vaults are
listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 1 {
			employer, err := common.ParseAddress(args[0])
			if err != nil {
				return fmt.Errorf("invalid employer address: %w", err)
			}
			evm, err := client.Dial(ctx, cfg.RPCURL, cfg.Chain(), cfg.PollInterval, logger)
			if err != nil {
				return err
			}
			defer evm.Close()

			vaults, err := payroll.NewFactory(evm, cfg.Factory()).EmployerVaults(ctx, employer)
			if err != nil {
				return err
			}
			printVaults(cmd.OutOrStdout(), payroll.ListView{
				State:    payroll.ListLoaded,
				Employer: employer,
				Heading:  "Payrolls for " + common.ShortAddress(employer),
				Vaults:   vaults,
			})
			return nil
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.employer.Connect(ctx); err != nil {
			return err
		}
		defer a.employer.Disconnect(ctx)

		view, err := a.employer.Payrolls(ctx, true)
		if err != nil {
			return err
		}
		printVaults(cmd.OutOrStdout(), view)
		return nil
	},
}

func printVaults(w io.Writer, view payroll.ListView) {
	fmt.Fprintln(w, view.Heading)
	if len(view.Vaults) == 0 {
		fmt.Fprintln(w, payroll.MsgNoPayrolls)
		return
	}
	for i, v := range view.Vaults {
		fmt.Fprintf(w, "%3d. %s\n", i+1, v.Hex())
	}
}

var (
	createEmployee string
	createAmount   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a monthly payroll vault for an employee",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.employer.Connect(ctx)
		if err != nil {
			return err
		}
		defer a.employer.Disconnect(ctx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Welcome %s!\n", snap.Account.Hex())

		res, err := a.employer.CreatePayroll(ctx, createEmployee, createAmount)
		if err != nil {
			return err
		}
		printResult(out, res)
		return nil
	},
}

func printResult(w io.Writer, res *payroll.Result) {
	fmt.Fprintf(w, "Payroll created. Block %d.\n", res.BlockNumber)
	fmt.Fprintf(w, "  tx:            %s\n", res.TxHash.Hex())
	if res.HasVault {
		fmt.Fprintf(w, "  vault:         %s\n", res.Vault.Hex())
	}
	fmt.Fprintf(w, "  monthly:       %s\n", common.MicroToUSDT(res.MonthlyAmount))
	fmt.Fprintf(w, "  first payment: %s\n", time.Unix(res.FirstPayment, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "  reference:     %s\n", hexutil.Encode(res.Reference[:]))
}

func init() {
	createCmd.Flags().StringVar(&createEmployee, "employee", payroll.DefaultEmployee, "Employee address")
	createCmd.Flags().StringVar(&createAmount, "amount", payroll.DefaultAmount, "Monthly amount in token units, e.g. 1500.25")
}
